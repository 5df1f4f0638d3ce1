package store

// Status - состояние загрузки ресурса
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)

// Resource - последний снимок ответа backend и флаги загрузки.
// Переходы чистые: каждый метод возвращает новое значение.
type Resource[T any] struct {
	Status Status `json:"status"`
	Data   T      `json:"data"`
	Error  string `json:"error,omitempty"`
}

// Pending - запрос ушел: ошибка сбрасывается, данные остаются
func (r Resource[T]) Pending() Resource[T] {
	r.Status = StatusLoading
	r.Error = ""
	return r
}

// Fulfilled заменяет данные целиком
func (r Resource[T]) Fulfilled(data T) Resource[T] {
	return Resource[T]{Status: StatusLoaded, Data: data}
}

// Rejected сохраняет последние успешно загруженные данные
func (r Resource[T]) Rejected(message string) Resource[T] {
	r.Status = StatusError
	r.Error = message
	return r
}

func (r Resource[T]) Loaded() bool { return r.Status == StatusLoaded }
