package notify

import (
	"encoding/json"
	"sync"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Длительность показа toast в браузере
const (
	SuccessDurationMs = 4000
	ErrorDurationMs   = 5000
)

// DefaultSuccessMessage - текст по умолчанию для успешной операции
const DefaultSuccessMessage = "Operation completed successfully!"

// Notifier получает уведомления, которые нужно показать пользователю
type Notifier interface {
	Success(message string)
	Error(message string)
}

type Notification struct {
	Level      Level  `json:"level"`
	Message    string `json:"message"`
	DurationMs int    `json:"duration_ms"`
}

// Queue собирает уведомления одного запроса. Безопасна для конкурентного использования.
type Queue struct {
	mu    sync.Mutex
	items []Notification
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Success(message string) {
	q.push(Notification{Level: LevelSuccess, Message: message, DurationMs: SuccessDurationMs})
}

func (q *Queue) Error(message string) {
	q.push(Notification{Level: LevelError, Message: message, DurationMs: ErrorDurationMs})
}

func (q *Queue) push(n Notification) {
	q.mu.Lock()
	q.items = append(q.items, n)
	q.mu.Unlock()
}

// Items возвращает копию накопленных уведомлений
func (q *Queue) Items() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// MarshalJSON отдает очередь как массив
func (q *Queue) MarshalJSON() ([]byte, error) {
	items := q.Items()
	if items == nil {
		items = []Notification{}
	}
	return json.Marshal(items)
}

// Discard - Notifier, который ничего не делает
var Discard Notifier = discard{}

type discard struct{}

func (discard) Success(string) {}
func (discard) Error(string)   {}
