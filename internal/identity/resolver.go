package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/codeclash/codeclash-backend/internal/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrStoreUnavailable = errors.New("user store unavailable")
)

// Resolver 토큰 주체를 사용자 정보로 해석하는 외부 사용자 스토어 인터페이스
type Resolver interface {
	Resolve(ctx context.Context, userID string) (*models.User, error)
}

// StoreResolver 플랫폼 사용자 서비스의 내부 API를 호출하는 해석기
type StoreResolver struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewStoreResolver 해석기 생성
func NewStoreResolver(baseURL string, logger *zap.Logger) *StoreResolver {
	return &StoreResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
	}
}

// Resolve 사용자 ID로 사용자 조회
func (r *StoreResolver) Resolve(ctx context.Context, userID string) (*models.User, error) {
	url := fmt.Sprintf("%s/internal/users/%s", r.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("User store request failed",
			zap.String("userId", userID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotFound:
		return nil, ErrUserNotFound
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrStoreUnavailable, resp.StatusCode)
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrStoreUnavailable, err)
	}
	if user.ID == "" {
		return nil, ErrUserNotFound
	}

	return &user, nil
}
