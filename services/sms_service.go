package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	DefaultSmsCodeTTL = 3 * time.Minute
	smsCodeKeyPrefix  = "duopet:sms:code:"
)

// CodeStore keeps verification codes until they expire or are used.
type CodeStore interface {
	Save(ctx context.Context, phone, code string, ttl time.Duration) error
	// Consume reports whether code matches and removes it when it does.
	Consume(ctx context.Context, phone, code string) (bool, error)
}

// SmsSender delivers a text message.
type SmsSender interface {
	Send(ctx context.Context, phone, message string) error
}

// LogSmsSender writes messages to the log instead of a carrier.
type LogSmsSender struct {
	Log logrus.FieldLogger
}

func (s LogSmsSender) Send(_ context.Context, phone, message string) error {
	s.Log.WithField("phone", maskPhone(phone)).Info(message)
	return nil
}

var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  redis.call("DEL", KEYS[1])
  return 1
end
return 0
`)

// RedisCodeStore stores codes with a native key expiry.
type RedisCodeStore struct {
	client *redis.Client
	prefix string
}

func NewRedisCodeStore(client *redis.Client, prefix string) *RedisCodeStore {
	if prefix == "" {
		prefix = smsCodeKeyPrefix
	}
	return &RedisCodeStore{client: client, prefix: prefix}
}

func (s *RedisCodeStore) Save(ctx context.Context, phone, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+phone, code, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisCodeStore) Consume(ctx context.Context, phone, code string) (bool, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{s.prefix + phone}, code).Int64()
	if err != nil {
		return false, fmt.Errorf("redis consume: %w", err)
	}
	return res == 1, nil
}

type codeEntry struct {
	code      string
	expiresAt time.Time
}

// MemoryCodeStore is a process-local store. Expired entries are removed by
// Sweep, which RunSweeper calls periodically.
type MemoryCodeStore struct {
	mu      sync.Mutex
	entries map[string]codeEntry
	now     func() time.Time
}

func NewMemoryCodeStore(now func() time.Time) *MemoryCodeStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryCodeStore{entries: map[string]codeEntry{}, now: now}
}

func (s *MemoryCodeStore) Save(_ context.Context, phone, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[phone] = codeEntry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryCodeStore) Consume(_ context.Context, phone, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[phone]
	if !ok {
		return false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, phone)
		return false, nil
	}
	if entry.code != code {
		return false, nil
	}
	delete(s.entries, phone)
	return true, nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryCodeStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for phone, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, phone)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries.
func (s *MemoryCodeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryCodeStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// SmsService sends and checks six-digit verification codes.
type SmsService struct {
	store  CodeStore
	sender SmsSender
	ttl    time.Duration
	log    logrus.FieldLogger
}

func NewSmsService(store CodeStore, sender SmsSender, ttl time.Duration, log logrus.FieldLogger) *SmsService {
	if ttl <= 0 {
		ttl = DefaultSmsCodeTTL
	}
	return &SmsService{store: store, sender: sender, ttl: ttl, log: log}
}

// SendCode stores a fresh code for phone and sends it.
func (s *SmsService) SendCode(ctx context.Context, phone string) error {
	phone, err := normalizePhone(phone)
	if err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if err := s.store.Save(ctx, phone, code, s.ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if err := s.sender.Send(ctx, phone, fmt.Sprintf("[DuoPet] 인증번호는 %s 입니다.", code)); err != nil {
		return fmt.Errorf("%w: send sms: %v", ErrInternal, err)
	}
	return nil
}

// VerifyCode reports whether code is the live code for phone. A match uses it up.
func (s *SmsService) VerifyCode(ctx context.Context, phone, code string) (bool, error) {
	phone, err := normalizePhone(phone)
	if err != nil {
		return false, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return false, ErrBadRequest
	}

	ok, err := s.store.Consume(ctx, phone, code)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return ok, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizePhone(phone string) (string, error) {
	phone = strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(phone))
	if len(phone) < 10 || len(phone) > 11 {
		return "", fmt.Errorf("%w: invalid phone number", ErrBadRequest)
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: invalid phone number", ErrBadRequest)
		}
	}
	return phone, nil
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
