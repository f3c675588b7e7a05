package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/url"
	"regexp"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/config"
	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/notify"
	"github.com/fortifiedfantasy/fein-server/internal/rate"
	"github.com/fortifiedfantasy/fein-server/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const attemptCap = 10

var codePattern = regexp.MustCompile(`^\d{6}$`)

// Challenge identifies which issued code a verify call targets: either the
// opaque challenge token from issuance, or the raw identifier again.
type Challenge interface {
	isChallenge()
}

type ByToken struct {
	Token string
}

type ByIdentifier struct {
	Raw string
}

func (ByToken) isChallenge()      {}
func (ByIdentifier) isChallenge() {}

type CodeIssued struct {
	MemberID    string
	SignupURL   string
	ChallengeID string
	Sent        bool
}

type VerifyResult struct {
	MemberID string
	Kind     domain.IdentifierKind
	Value    string
}

// IdentityService issues and verifies one-time codes binding an identifier
// to a (possibly new) member.
type IdentityService struct {
	codes    repository.IdentityCodeRepository
	quick    repository.QuickhitterRepository
	members  repository.MemberRepository
	registry *MemberService
	limiter  rate.Limiter
	sender   notify.Sender
	cfg      *config.Config
}

func NewIdentityService(codes repository.IdentityCodeRepository, quick repository.QuickhitterRepository, members repository.MemberRepository, registry *MemberService, limiter rate.Limiter, sender notify.Sender, cfg *config.Config) *IdentityService {
	return &IdentityService{
		codes:    codes,
		quick:    quick,
		members:  members,
		registry: registry,
		limiter:  limiter,
		sender:   sender,
		cfg:      cfg,
	}
}

// RequestCode issues a fresh 6-digit code for the identifier, retiring any
// older active code for the same (kind, value, channel). Delivery is
// dispatched asynchronously; a failed send never fails the request.
func (s *IdentityService) RequestCode(ctx context.Context, raw, ip string) (*CodeIssued, error) {
	ident, err := domain.ClassifyIdentifier(raw)
	if err != nil {
		return nil, err
	}
	// Handles have no delivery channel.
	if ident.Kind == domain.KindHandle {
		return nil, domain.ErrInvalidIdentifier
	}

	ipHash := HashIP(ip)
	res, err := s.limiter.Allow(ctx, ipHash+"#"+ident.Value)
	if err != nil {
		// A broken limiter store must not take down issuance.
		log.Printf("ERROR [IdentityService.RequestCode] rate limiter: %v", err)
	} else if !res.Allowed {
		return nil, domain.ErrRateLimited
	}

	if err := s.codes.LogAttempt(ctx, &domain.IdentityAttempt{
		Kind:      ident.Kind,
		Value:     ident.Value,
		IPHash:    ipHash,
		CreatedAt: time.Now(),
	}); err != nil {
		log.Printf("ERROR [IdentityService.RequestCode] attempt log: %v", err)
	}

	member, err := s.registry.FindOrCreate(ctx, ident)
	if err != nil {
		return nil, err
	}

	code, err := sixDigitCode()
	if err != nil {
		return nil, err
	}

	channel := domain.ChannelFor(ident.Kind)
	now := time.Now()
	row := &domain.IdentityCode{
		Kind:      ident.Kind,
		Value:     ident.Value,
		Channel:   channel,
		Code:      code,
		MemberID:  &member.MemberID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.CodeTTL),
		IsActive:  true,
	}
	if err := s.codes.Issue(ctx, row); err != nil {
		return nil, err
	}

	go func(channel domain.CodeChannel, to, code string) {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.sender.SendCode(sendCtx, channel, to, code); err != nil {
			log.Printf("ERROR [IdentityService.RequestCode] dispatch %s to %s: %v", channel, to, err)
		}
	}(channel, ident.Value, code)

	token, err := s.challengeToken(ident, row.ExpiresAt)
	if err != nil {
		return nil, err
	}

	return &CodeIssued{
		MemberID:    member.MemberID,
		SignupURL:   signupURL(ident),
		ChallengeID: token,
		Sent:        true,
	}, nil
}

// VerifyCode checks a submitted code against the newest live row for the
// challenge's identifier. Exactly one concurrent verify can win a given row.
func (s *IdentityService) VerifyCode(ctx context.Context, ch Challenge, code string) (*VerifyResult, error) {
	if !codePattern.MatchString(code) {
		return nil, domain.ErrInvalidOrExpired
	}

	ident, err := s.resolveChallenge(ch)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	row, err := s.codes.FindNewestLive(ctx, ident.Kind, ident.Value, now)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvalidOrExpired
	}
	if err != nil {
		return nil, err
	}
	if row.Attempts >= attemptCap {
		return nil, domain.ErrInvalidOrExpired
	}

	if row.Code != code {
		if err := s.codes.IncrementAttempts(ctx, row.ID, attemptCap); err != nil {
			log.Printf("ERROR [IdentityService.VerifyCode] attempts: %v", err)
		}
		// Same error whether the code or the row was wrong.
		return nil, domain.ErrInvalidOrExpired
	}

	won, err := s.codes.Consume(ctx, row.ID, now)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, domain.ErrInvalidOrExpired
	}

	memberID, err := s.resolveOwner(ctx, row, ident)
	if err != nil {
		return nil, err
	}

	if err := s.stampVerified(ctx, memberID, ident, now); err != nil {
		return nil, err
	}

	return &VerifyResult{MemberID: memberID, Kind: ident.Kind, Value: ident.Value}, nil
}

func (s *IdentityService) resolveChallenge(ch Challenge) (domain.Identifier, error) {
	switch c := ch.(type) {
	case ByToken:
		return s.parseChallengeToken(c.Token)
	case ByIdentifier:
		return domain.ClassifyIdentifier(c.Raw)
	default:
		return domain.Identifier{}, domain.ErrInvalidIdentifier
	}
}

func (s *IdentityService) resolveOwner(ctx context.Context, row *domain.IdentityCode, ident domain.Identifier) (string, error) {
	if row.MemberID != nil && *row.MemberID != "" {
		return *row.MemberID, nil
	}
	member, err := s.registry.FindOrCreate(ctx, ident)
	if err != nil {
		return "", err
	}
	return member.MemberID, nil
}

// stampVerified marks the quickhitter flag and mirrors the timestamp onto the
// member row.
func (s *IdentityService) stampVerified(ctx context.Context, memberID string, ident domain.Identifier, at time.Time) error {
	qh := &domain.Quickhitter{MemberID: memberID, CreatedAt: at, UpdatedAt: at}
	switch ident.Kind {
	case domain.KindEmail:
		v := ident.Value
		qh.Email = &v
		qh.EmailIsVerified = true
	case domain.KindPhone:
		v := ident.Value
		qh.PhoneE164 = &v
		qh.PhoneIsVerified = true
	}
	if err := s.quick.Upsert(ctx, qh); err != nil {
		return err
	}
	return s.members.MarkVerified(ctx, memberID, ident.Kind, at)
}

// challengeClaims is the JWT payload behind a challenge_id.
type challengeClaims struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
	jwt.RegisteredClaims
}

func (s *IdentityService) challengeToken(ident domain.Identifier, expires time.Time) (string, error) {
	claims := challengeClaims{
		Kind:  string(ident.Kind),
		Value: ident.Value,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.ChallengeSecret))
}

func (s *IdentityService) parseChallengeToken(raw string) (domain.Identifier, error) {
	var claims challengeClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.ChallengeSecret), nil
	})
	if err != nil || !token.Valid {
		return domain.Identifier{}, domain.ErrInvalidOrExpired
	}
	return domain.Identifier{Kind: domain.IdentifierKind(claims.Kind), Value: claims.Value}, nil
}

func signupURL(ident domain.Identifier) string {
	q := url.Values{}
	q.Set(string(ident.Kind), ident.Value)
	return "/signup?" + q.Encode()
}

// HashIP fingerprints a client IP for rate limiting and session binding.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
