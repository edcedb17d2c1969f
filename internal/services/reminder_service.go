package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"taskdeck/internal/config"
	"taskdeck/internal/repositories"
)

// ReminderService periodically notifies owners about incomplete todos whose
// deadline is within the configured window. Each todo is reminded once per
// deadline.
type ReminderService struct {
	todos  repositories.TodoRepository
	users  repositories.UserRepository
	sender MessageSender
	cfg    config.ReminderConfig
	now    func() time.Time

	mu        sync.Mutex
	scheduler *gocron.Scheduler
}

func NewReminderService(todos repositories.TodoRepository, users repositories.UserRepository, sender MessageSender, cfg config.ReminderConfig) *ReminderService {
	return &ReminderService{todos: todos, users: users, sender: sender, cfg: cfg, now: time.Now}
}

func (s *ReminderService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler != nil {
		log.Println("[reminder] scheduler is already running")
		return nil
	}

	sched := gocron.NewScheduler(time.UTC)
	sched.SingletonModeAll()
	if _, err := sched.Every(s.cfg.Interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Interval)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			log.Printf("[reminder][run][err] %v", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to create reminder job: %w", err)
	}
	sched.StartAsync()
	s.scheduler = sched
	log.Printf("[reminder] scheduler started interval=%s window=%s", s.cfg.Interval, s.cfg.Window)
	return nil
}

func (s *ReminderService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler == nil {
		return
	}
	s.scheduler.Stop()
	s.scheduler = nil
	log.Println("[reminder] scheduler stopped")
}

// RunOnce sends one batch and returns the number of messages delivered.
// Due todos are marked fired even when the owner has no linked chat.
func (s *ReminderService) RunOnce(ctx context.Context) (int, error) {
	until := s.now().UTC().Add(s.cfg.Window)
	due, err := s.todos.ListDueForReminder(ctx, until, s.cfg.Batch)
	if err != nil {
		return 0, fmt.Errorf("list due todos: %w", err)
	}

	sent := 0
	for i := range due {
		t := &due[i]
		chatID, allow, err := s.users.GetTelegramSettings(ctx, t.UserID)
		if err != nil {
			log.Printf("[reminder][settings][err] user=%d: %v", t.UserID, err)
			continue
		}
		if allow && chatID != 0 && s.sender != nil {
			prefix := "⏰ Deadline soon"
			if !t.Deadline.After(s.now()) {
				prefix = "⚠️ Deadline passed"
			}
			if err := s.sender.SendMessage(chatID, FormatTodo(prefix, t)); err != nil {
				log.Printf("[reminder][send][err] todo=%s: %v", t.ID, err)
				continue
			}
			sent++
		}
		if err := s.todos.SetReminderFired(ctx, t.ID); err != nil {
			log.Printf("[reminder][mark][err] todo=%s: %v", t.ID, err)
		}
	}
	if len(due) > 0 {
		log.Printf("[reminder][run][ok] due=%d sent=%d", len(due), sent)
	}
	return sent, nil
}
