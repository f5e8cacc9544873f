package persistence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Exchange is one prompt/response round trip with the model.
type Exchange struct {
	SessionID    string
	Model        string
	Prompt       string
	Response     string
	InputTokens  int
	OutputTokens int
	Timestamp    time.Time
}

// ExchangeStore records model exchanges per session.
type ExchangeStore interface {
	Append(ctx context.Context, exchange Exchange) error
}

// SessionLogPrefix derives the short, stable file prefix for a session: the
// first four hex characters of sha256(session id).
func SessionLogPrefix(sessionID string) string {
	sum := sha256.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:])[:4]
}

// FileExchangeStore appends human-readable REQUEST/RESPONSE blocks to
// <prefix>_chatlog.txt files.
type FileExchangeStore struct {
	root string
	mu   sync.Mutex
}

// NewFileExchangeStore builds a store in the provided root directory.
func NewFileExchangeStore(root string) (*FileExchangeStore, error) {
	if root == "" {
		return nil, errors.New("exchange log root required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FileExchangeStore{root: root}, nil
}

// PathFor returns the chat log path of a session.
func (s *FileExchangeStore) PathFor(sessionID string) string {
	return filepath.Join(s.root, SessionLogPrefix(sessionID)+"_chatlog.txt")
}

// Append writes one exchange. Escaped newlines and tabs in the response are
// expanded so JSON payloads stay readable.
func (s *FileExchangeStore) Append(ctx context.Context, exchange Exchange) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if exchange.SessionID == "" {
		return errors.New("session id required")
	}
	response := strings.NewReplacer(`\n`, "\n", `\t`, "\t").Replace(exchange.Response)

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.PathFor(exchange.SessionID), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "\n---\nREQUEST:\n%s\n\nRESPONSE:\n%s\n", exchange.Prompt, response)
	return err
}

// MultiExchangeStore fans an exchange out to several stores, returning the
// first error after trying all of them.
type MultiExchangeStore []ExchangeStore

func (m MultiExchangeStore) Append(ctx context.Context, exchange Exchange) error {
	var errs []error
	for _, store := range m {
		if store == nil {
			continue
		}
		if err := store.Append(ctx, exchange); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
