package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/deeecaaa/cardmarket/internal/domain"
	"github.com/deeecaaa/cardmarket/internal/repository"
	"github.com/deeecaaa/cardmarket/pkg/eth"
)

var ErrChallengeExpired = errors.New("no pending login challenge for this wallet")

const challengeTTL = 5 * time.Minute

// AuthService turns a wallet signature into a session token. There is no
// ambient "current user": every request carries the JWT, and its subject is
// the wallet address the caller proved control of at login.
type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration

	mu         sync.Mutex
	challenges map[string]loginChallenge
}

type loginChallenge struct {
	message string
	expires time.Time
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   24 * time.Hour,
		challenges: make(map[string]loginChallenge),
	}
}

// Challenge issues a single-use login message for the wallet to sign.
func (s *AuthService) Challenge(wallet string) (string, error) {
	if !eth.IsAddress(wallet) {
		return "", domain.ErrInvalidAddress
	}
	wallet = eth.Normalize(wallet)

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	msg := fmt.Sprintf("Sign in to the card marketplace\nWallet: %s\nNonce: %s",
		wallet, hex.EncodeToString(nonce))

	s.mu.Lock()
	s.challenges[wallet] = loginChallenge{message: msg, expires: time.Now().Add(challengeTTL)}
	s.mu.Unlock()

	return msg, nil
}

type LoginResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

// Login verifies the signature over the pending challenge, consumes the
// challenge, and mints a session token for the registered user.
func (s *AuthService) Login(ctx context.Context, wallet, signature string) (*LoginResponse, error) {
	if !eth.IsAddress(wallet) {
		return nil, domain.ErrInvalidAddress
	}
	wallet = eth.Normalize(wallet)

	s.mu.Lock()
	ch, ok := s.challenges[wallet]
	if ok {
		delete(s.challenges, wallet)
	}
	s.mu.Unlock()

	if !ok || time.Now().After(ch.expires) {
		return nil, ErrChallengeExpired
	}

	recovered, err := eth.RecoverAddress(ch.message, signature)
	if err != nil || !strings.EqualFold(recovered, wallet) {
		return nil, domain.ErrBadSignature
	}

	user, err := s.userRepo.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	token, err := s.generateToken(wallet)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}
	return &LoginResponse{User: user, AccessToken: token}, nil
}

func (s *AuthService) generateToken(wallet string) (string, error) {
	claims := jwt.MapClaims{
		"sub": wallet,
		"exp": time.Now().Add(s.tokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
