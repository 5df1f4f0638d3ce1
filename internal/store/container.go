package store

import (
	"context"
	"sync"
)

// Container - кэш одной сессии. Все изменения идут через Update под мьютексом.
type Container struct {
	mu    sync.RWMutex
	key   string
	state State
	dirty bool
}

func NewContainer(key string, s State) *Container {
	return &Container{key: key, state: s}
}

// Key - отпечаток сессии. Пустой у анонимного посетителя, такой кэш не сохраняется.
func (c *Container) Key() string { return c.key }

// Snapshot возвращает копию состояния. Срезы внутри только читаются.
func (c *Container) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Update применяет reducer к состоянию
func (c *Container) Update(reduce func(State) State) {
	c.mu.Lock()
	c.state = reduce(c.state)
	c.dirty = true
	c.mu.Unlock()
}

// takeDirty отдает состояние для записи и сбрасывает флаг одним шагом,
// чтобы Update во время Save не потерялся
func (c *Container) takeDirty() (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dirty := c.dirty
	c.dirty = false
	return c.state, dirty
}

func (c *Container) markDirty() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

func (c *Container) markClean() {
	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
}

// Repository хранит State между запросами
type Repository interface {
	Load(ctx context.Context, key string) (State, bool, error)
	Save(ctx context.Context, key string, s State) error
	Delete(ctx context.Context, key string) error
}

// Manager выдает контейнеры по ключу сессии. Параллельные запросы одной сессии
// получают один и тот же контейнер, после последнего Release он сохраняется.
// Обращения к Repository идут без m.mu: медленный Load или Save одной сессии
// не задерживает остальные.
type Manager struct {
	repo Repository
	mu   sync.Mutex
	live map[string]*entry
}

// entry живет в live от первого Acquire до конца последнего Save
type entry struct {
	key   string
	c     *Container // nil до окончания загрузки
	err   error
	ready chan struct{}

	refs   int
	saving int

	// порядок записей одного ключа: Save, Store и Drop не обгоняют друг друга
	saveMu sync.Mutex
}

func NewManager(repo Repository) *Manager {
	return &Manager{repo: repo, live: make(map[string]*entry)}
}

func (m *Manager) Acquire(ctx context.Context, key string) (*Container, error) {
	if key == "" {
		return NewContainer("", NewState()), nil
	}

	m.mu.Lock()
	if e, ok := m.live[key]; ok {
		e.refs++
		m.mu.Unlock()
		return m.await(ctx, e)
	}
	e := &entry{key: key, ready: make(chan struct{}), refs: 1}
	m.live[key] = e
	m.mu.Unlock()

	s, found, err := m.repo.Load(ctx, key)

	m.mu.Lock()
	if err != nil {
		e.err = err
		if m.live[key] == e {
			delete(m.live, key)
		}
	} else {
		if !found {
			s = NewState()
		}
		e.c = NewContainer(key, s)
	}
	close(e.ready)
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return e.c, nil
}

// await ждет загрузку, начатую другим запросом той же сессии
func (m *Manager) await(ctx context.Context, e *entry) (*Container, error) {
	select {
	case <-e.ready:
	case <-ctx.Done():
		_ = m.unref(context.WithoutCancel(ctx), e)
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.c, nil
}

// Release сохраняет изменения, когда контейнер больше никем не используется
func (m *Manager) Release(ctx context.Context, c *Container) error {
	if c == nil || c.key == "" {
		return nil
	}

	m.mu.Lock()
	e, ok := m.live[c.key]
	ok = ok && e.c == c
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return m.unref(ctx, e)
}

func (m *Manager) unref(ctx context.Context, e *entry) error {
	m.mu.Lock()
	e.refs--
	if e.refs > 0 || e.c == nil || m.live[e.key] != e {
		m.mu.Unlock()
		return nil
	}
	// запись остается в live, пока идет Save: новый запрос получит этот же контейнер
	e.saving++
	m.mu.Unlock()

	err := m.persist(ctx, e)

	m.mu.Lock()
	e.saving--
	if e.refs == 0 && e.saving == 0 && m.live[e.key] == e {
		delete(m.live, e.key)
	}
	m.mu.Unlock()
	return err
}

func (m *Manager) persist(ctx context.Context, e *entry) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	s, dirty := e.c.takeDirty()
	if !dirty {
		return nil
	}
	if err := m.repo.Save(ctx, e.key, s); err != nil {
		e.c.markDirty()
		return err
	}
	return nil
}

// Drop удаляет кэш сессии (выход, 401)
func (m *Manager) Drop(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	m.mu.Lock()
	e, ok := m.live[key]
	var c *Container
	if ok {
		c = e.c
		delete(m.live, key)
	}
	m.mu.Unlock()

	if ok {
		e.saveMu.Lock()
		defer e.saveMu.Unlock()
		if c != nil {
			c.Update(ReduceLogout)
			c.markClean()
		}
	}
	return m.repo.Delete(ctx, key)
}

// Store сохраняет состояние под новым ключом. Нужен после входа: кэш анонимного
// запроса переезжает под отпечаток только что выданного токена.
func (m *Manager) Store(ctx context.Context, key string, s State) error {
	if key == "" {
		return nil
	}

	m.mu.Lock()
	e, ok := m.live[key]
	var c *Container
	if ok {
		c = e.c
	}
	m.mu.Unlock()

	if !ok {
		return m.repo.Save(ctx, key, s)
	}
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	if c != nil {
		c.Update(func(State) State { return s })
		c.markClean()
	}
	return m.repo.Save(ctx, key, s)
}
