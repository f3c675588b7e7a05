package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/config"
	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CookieMemberID  = "ff_member_id"
	CookieSessionID = "ff_session_id"
	CookieLoggedIn  = "ff_logged_in"

	maxUserAgentLen = 1024
)

// SessionService turns a verified member into durable client state.
type SessionService struct {
	sessions repository.SessionRepository
	members  repository.MemberRepository
	cfg      *config.Config
}

func NewSessionService(sessions repository.SessionRepository, members repository.MemberRepository, cfg *config.Config) *SessionService {
	return &SessionService{sessions: sessions, members: members, cfg: cfg}
}

// Ensure finds or creates the session for the (member, ip_hash, user_agent)
// fingerprint. Calling it again with the same fingerprint returns the same
// session; a lost insert race is resolved by re-reading the fingerprint row.
func (s *SessionService) Ensure(ctx context.Context, memberID, ip, userAgent string) (*domain.Session, error) {
	if len(userAgent) > maxUserAgentLen {
		userAgent = userAgent[:maxUserAgentLen]
	}
	ipHash := HashIP(ip)
	now := time.Now()

	session, err := s.sessions.GetByFingerprint(ctx, memberID, ipHash, userAgent)
	if err == nil {
		if err := s.sessions.Touch(ctx, session.ID, now); err != nil {
			return nil, err
		}
		session.LastSeenAt = now
		return session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session = &domain.Session{
		ID:         uuid.New(),
		MemberID:   memberID,
		IPHash:     ipHash,
		UserAgent:  userAgent,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	err = s.sessions.Create(ctx, session)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the race; the fingerprint index kept exactly one row.
		return s.sessions.GetByFingerprint(ctx, memberID, ipHash, userAgent)
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Validate reports whether the exact (member, session) pair exists and the
// member is still visible. Anything else is anonymous.
func (s *SessionService) Validate(ctx context.Context, memberID string, sessionID uuid.UUID) (bool, error) {
	session, err := s.sessions.GetPair(ctx, memberID, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := s.members.GetByID(ctx, memberID); errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	_ = s.sessions.Touch(ctx, session.ID, time.Now())
	return true, nil
}

// WriteCookies installs the three browser cookies the rest of the system
// keys on: two httpOnly bearers and one visible UI flag.
func (s *SessionService) WriteCookies(w http.ResponseWriter, memberID string, sessionID uuid.UUID) {
	maxAge := int(s.cfg.SessionLifetime.Seconds())
	secure := s.cfg.Environment != "development"

	http.SetCookie(w, &http.Cookie{
		Name: CookieMemberID, Value: memberID,
		Path: "/", MaxAge: maxAge, HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name: CookieSessionID, Value: sessionID.String(),
		Path: "/", MaxAge: maxAge, HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name: CookieLoggedIn, Value: "1",
		Path: "/", MaxAge: maxAge, HttpOnly: false, Secure: secure, SameSite: http.SameSiteLaxMode,
	})
}
