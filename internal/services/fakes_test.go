package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskdeck/internal/models"
	"taskdeck/internal/repositories"
)

type fakeTodoRepo struct {
	mu    sync.Mutex
	todos map[string]models.Todo
	fired []string
}

func newFakeTodoRepo(todos ...models.Todo) *fakeTodoRepo {
	r := &fakeTodoRepo{todos: map[string]models.Todo{}}
	for _, t := range todos {
		r.todos[t.ID] = t
	}
	return r
}

func (r *fakeTodoRepo) Store(_ context.Context, t *models.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.todos[t.ID] = *t
	return nil
}

func (r *fakeTodoRepo) FindByID(_ context.Context, userID int64, id string) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok || t.UserID != userID {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (r *fakeTodoRepo) FindAll(_ context.Context, userID int64) ([]models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Todo{}
	for _, t := range r.todos {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeTodoRepo) Update(_ context.Context, t *models.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.todos[t.ID]
	if !ok || old.UserID != t.UserID {
		return models.ErrNotFound
	}
	r.todos[t.ID] = *t
	return nil
}

func (r *fakeTodoRepo) Delete(_ context.Context, userID int64, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok || t.UserID != userID {
		return models.ErrNotFound
	}
	delete(r.todos, id)
	return nil
}

func (r *fakeTodoRepo) Statistics(ctx context.Context, userID int64) (models.Statistics, error) {
	all, _ := r.FindAll(ctx, userID)
	return models.ComputeStatistics(all), nil
}

func (r *fakeTodoRepo) ListDueForReminder(_ context.Context, until time.Time, limit int) ([]models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Todo
	for _, t := range r.todos {
		if !t.IsCompleted && t.RemindedAt == nil && !t.Deadline.After(until) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTodoRepo) SetReminderFired(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.todos[id]
	now := time.Now()
	t.RemindedAt = &now
	r.todos[id] = t
	r.fired = append(r.fired, id)
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int64]*models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return repositories.ErrDuplicate
		}
	}
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	u.NotifyTasksTelegram = true
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id int64, p models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.Name, u.Email, u.Phone, u.ProfilePicture = p.Name, p.Email, p.Phone, p.ProfilePicture
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) UpdateTelegramLink(_ context.Context, userID, chatID int64, enable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	now := time.Now()
	u.TelegramChatID, u.TelegramLinkedAt, u.NotifyTasksTelegram = chatID, &now, enable
	return nil
}

func (r *fakeUserRepo) ClearTelegramLink(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.TelegramChatID, u.TelegramLinkedAt = 0, nil
	}
	return nil
}

func (r *fakeUserRepo) GetTelegramSettings(_ context.Context, userID int64) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return 0, false, models.ErrNotFound
	}
	return u.TelegramChatID, u.NotifyTasksTelegram, nil
}

func (r *fakeUserRepo) GetByChatID(_ context.Context, chatID int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TelegramChatID == chatID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

type fakeLinkRepo struct {
	mu    sync.Mutex
	links map[string]*models.TelegramLink
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: map[string]*models.TelegramLink{}}
}

func (r *fakeLinkRepo) Create(_ context.Context, chatID int64, code string, ttl time.Duration) (*models.TelegramLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := &models.TelegramLink{ChatID: chatID, Code: code, ExpiresAt: time.Now().Add(ttl), CreatedAt: time.Now()}
	r.links[code] = l
	return l, nil
}

func (r *fakeLinkRepo) UseByCode(_ context.Context, code string) (*models.TelegramLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[code]
	if !ok || l.Used || time.Now().After(l.ExpiresAt) {
		return nil, models.ErrNotFound
	}
	l.Used = true
	cp := *l
	return &cp, nil
}

type sentMessage struct {
	ChatID int64
	Text   string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (s *fakeSender) SendMessage(chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (s *fakeSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

type fakeMailer struct {
	welcomed []string
}

func (m *fakeMailer) SendWelcomeEmail(email, name string) error {
	m.welcomed = append(m.welcomed, email)
	return nil
}
