package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/points-pay/points_pay/internal/storage"
)

const (
	userDir       = "users"
	userIndexFile = "user_index.txt"
)

// FileRepository stores one text record per user keyed by username,
// plus an append-only username index for id lookups and listings.
type FileRepository struct {
	store storage.Store

	mu sync.Mutex
}

// NewFileRepository builds a repository on top of the given store.
func NewFileRepository(store storage.Store) *FileRepository {
	return &FileRepository{store: store}
}

// Create persists a new user. The username must be free.
func (r *FileRepository) Create(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.findByUsername(u.Username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return r.write(u)
}

// FindByUsername loads the record stored under username.
func (r *FileRepository) FindByUsername(_ context.Context, username string) (User, error) {
	return r.findByUsername(username)
}

// FindByID scans the username index and returns the user whose id
// matches.
func (r *FileRepository) FindByID(_ context.Context, id string) (User, error) {
	usernames, err := r.store.ReadAllLines(userIndexFile)
	if err != nil {
		return User{}, err
	}
	for _, username := range usernames {
		u, err := r.findByUsername(username)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return User{}, err
		}
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// Update overwrites the record of an existing user.
func (r *FileRepository) Update(_ context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.findByUsername(u.Username); err != nil {
		return err
	}
	return r.write(u)
}

// List returns every readable user in index order.
func (r *FileRepository) List(_ context.Context) ([]User, error) {
	usernames, err := r.store.ReadAllLines(userIndexFile)
	if err != nil {
		return nil, err
	}
	var users []User
	for _, username := range usernames {
		u, err := r.findByUsername(username)
		if err != nil {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *FileRepository) findByUsername(username string) (User, error) {
	content, err := r.store.Read(recordName(username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return decodeUser(content)
}

func (r *FileRepository) write(u User) error {
	if err := r.store.Write(recordName(u.Username), encodeUser(u)); err != nil {
		return err
	}
	usernames, err := r.store.ReadAllLines(userIndexFile)
	if err != nil {
		return err
	}
	for _, name := range usernames {
		if name == u.Username {
			return nil
		}
	}
	return r.store.AppendLine(userIndexFile, u.Username)
}

func recordName(username string) string {
	return userDir + "/" + username + ".txt"
}

func encodeUser(u User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "userId:%s\n", u.ID)
	fmt.Fprintf(&b, "username:%s\n", u.Username)
	fmt.Fprintf(&b, "fullName:%s\n", u.FullName)
	fmt.Fprintf(&b, "email:%s\n", u.Email)
	fmt.Fprintf(&b, "phoneNumber:%s\n", u.Phone)
	fmt.Fprintf(&b, "passwordHash:%s\n", string(u.PasswordHash))
	fmt.Fprintf(&b, "role:%s\n", u.Role)
	fmt.Fprintf(&b, "generatedPassword:%t\n", u.GeneratedPassword)
	fmt.Fprintf(&b, "createdAt:%d", u.CreatedAt.Unix())
	return b.String()
}

func decodeUser(content string) (User, error) {
	var u User
	for _, line := range strings.Split(content, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "userId":
			u.ID = value
		case "username":
			u.Username = value
		case "fullName":
			u.FullName = value
		case "email":
			u.Email = value
		case "phoneNumber":
			u.Phone = value
		case "passwordHash":
			u.PasswordHash = []byte(value)
		case "role":
			u.Role = value
		case "generatedPassword":
			u.GeneratedPassword = value == "true"
		case "createdAt":
			if ts, err := strconv.ParseInt(value, 10, 64); err == nil {
				u.CreatedAt = time.Unix(ts, 0).UTC()
			}
		}
	}
	if u.ID == "" || u.Username == "" {
		return User{}, ErrNotFound
	}
	return u, nil
}
