package handlers

import (
	"context"
	"io"
	"sort"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/crypto/bcrypt"

	"taskdeck/internal/models"
	"taskdeck/internal/pdf"
	"taskdeck/internal/services"
)

type stubUsers struct {
	users map[int64]*models.User
	next  int64
}

func newStubUsers() *stubUsers {
	return &stubUsers{users: map[int64]*models.User{}, next: 1}
}

func (s *stubUsers) add(username, password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &models.User{ID: s.next, Name: username, Username: username, Email: username + "@example.com", PasswordHash: string(hash)}
	s.users[u.ID] = u
	s.next++
	return u
}

func (s *stubUsers) Register(_ context.Context, req models.RegisterRequest) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == req.Username {
			return nil, services.ErrUsernameTaken
		}
	}
	return s.add(req.Username, req.Password), nil
}

func (s *stubUsers) Authenticate(_ context.Context, username, password string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username && bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil {
			return u, nil
		}
	}
	return nil, services.ErrInvalidCredentials
}

func (s *stubUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, models.ErrNotFound
}

func (s *stubUsers) GetProfile(ctx context.Context, id int64) (*models.ProfileResponse, error) {
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ProfileResponse{User: u.Profile(), Statistics: models.Statistics{Total: 4, Completed: 1, Efficiency: 25}}, nil
}

func (s *stubUsers) UpdateProfile(ctx context.Context, id int64, req models.UpdateProfileRequest) (*models.Profile, error) {
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Name, u.Email, u.Phone, u.ProfilePicture = req.Name, req.Email, req.Phone, req.ProfilePicture
	p := u.Profile()
	return &p, nil
}

func (s *stubUsers) ChangePassword(ctx context.Context, id int64, current, next string) error {
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return services.ErrWrongPassword
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(next), bcrypt.MinCost)
	u.PasswordHash = string(hash)
	return nil
}

// stubTodos stores todos in memory and validates like the real service.
type stubTodos struct {
	todos map[string]models.Todo
	seq   int
}

func newStubTodos() *stubTodos {
	return &stubTodos{todos: map[string]models.Todo{}}
}

func (s *stubTodos) Create(_ context.Context, userID int64, in models.TodoInput) (*models.Todo, error) {
	deadline, err := time.Parse(time.RFC3339, in.Deadline)
	if err != nil {
		return nil, services.ErrInvalidTodo
	}
	s.seq++
	p := in.Priority
	if p == 0 {
		p = models.DefaultPriority
	}
	t := models.Todo{
		ID: "todo-" + strconv.Itoa(s.seq), UserID: userID, Title: in.Title, Description: in.Description,
		Priority: p, Deadline: deadline.UTC(), CreatedAt: time.Date(2026, 1, 1, 0, 0, s.seq, 0, time.UTC),
	}
	s.todos[t.ID] = t
	return &t, nil
}

func (s *stubTodos) GetByID(_ context.Context, userID int64, id string) (*models.Todo, error) {
	t, ok := s.todos[id]
	if !ok || t.UserID != userID {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (s *stubTodos) GetAll(_ context.Context, userID int64) ([]models.Todo, error) {
	out := []models.Todo{}
	for _, t := range s.todos {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *stubTodos) Update(ctx context.Context, userID int64, id string, in models.TodoInput) (*models.Todo, error) {
	t, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	deadline, err := time.Parse(time.RFC3339, in.Deadline)
	if err != nil {
		return nil, services.ErrInvalidTodo
	}
	t.Title, t.Description, t.Deadline, t.IsCompleted = in.Title, in.Description, deadline.UTC(), in.IsCompleted
	if in.Priority != 0 {
		t.Priority = in.Priority
	}
	s.todos[id] = *t
	return t, nil
}

func (s *stubTodos) Delete(ctx context.Context, userID int64, id string) (*models.Todo, error) {
	t, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	delete(s.todos, id)
	return t, nil
}

func (s *stubTodos) Statistics(ctx context.Context, userID int64) (models.Statistics, error) {
	all, _ := s.GetAll(ctx, userID)
	return models.ComputeStatistics(all), nil
}

type stubLinker struct {
	updates []tgbotapi.Update
	linked  map[int64]bool
}

func (s *stubLinker) HandleUpdate(_ context.Context, upd tgbotapi.Update) error {
	s.updates = append(s.updates, upd)
	return nil
}

func (s *stubLinker) Link(_ context.Context, userID int64, token string) (*models.TelegramStatus, error) {
	if token != "GOOD" {
		return nil, services.ErrInvalidLinkToken
	}
	if s.linked == nil {
		s.linked = map[int64]bool{}
	}
	s.linked[userID] = true
	return &models.TelegramStatus{Success: true, Linked: true, LinkInfo: &models.LinkInfo{ChatID: 99, Notify: true}}, nil
}

func (s *stubLinker) Unlink(_ context.Context, userID int64) (*models.TelegramStatus, error) {
	delete(s.linked, userID)
	return &models.TelegramStatus{Success: true}, nil
}

func (s *stubLinker) Status(_ context.Context, userID int64) (*models.TelegramStatus, error) {
	if s.linked[userID] {
		return &models.TelegramStatus{Success: true, Linked: true, LinkInfo: &models.LinkInfo{ChatID: 99, Notify: true}}, nil
	}
	return &models.TelegramStatus{Success: true}, nil
}

type stubReport struct{ got pdf.ReportData }

func (s *stubReport) TodoReport(w io.Writer, data pdf.ReportData) error {
	s.got = data
	_, err := io.WriteString(w, "%PDF-1.3 stub")
	return err
}
