package service

import (
	"github.com/fortifiedfantasy/fein-server/internal/config"
	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/notify"
	"github.com/fortifiedfantasy/fein-server/internal/rate"
	"github.com/fortifiedfantasy/fein-server/internal/repository"
)

type Services struct {
	Member     *MemberService
	Identity   *IdentityService
	Session    *SessionService
	Login      *LoginService
	Credential *CredentialService
	Bouncer    *BouncerService
	Contact    *ContactService
}

func NewServices(repos *repository.Repositories, limiter rate.Limiter, sender notify.Sender, cfg *config.Config) *Services {
	member := NewMemberService(repos.Member, repos.Quickhitter, repos.Recovery, domain.DefaultWordBanks())
	bouncer := NewBouncerService(repos.Member, repos.Block, repos.Guardian, repos.Relationship, repos.Contact)

	return &Services{
		Member:     member,
		Identity:   NewIdentityService(repos.IdentityCode, repos.Quickhitter, repos.Member, member, limiter, sender, cfg),
		Session:    NewSessionService(repos.Session, repos.Member, cfg),
		Login:      NewLoginService(member),
		Credential: NewCredentialService(repos.Credential, repos.Quickhitter),
		Bouncer:    bouncer,
		Contact:    NewContactService(repos.Contact, repos.Block, bouncer),
	}
}
