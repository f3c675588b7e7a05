package domain

type AccessLevel string

const (
	AccessNone    AccessLevel = "none"
	AccessLimited AccessLevel = "limited"
	AccessFull    AccessLevel = "full"
)

// Access refusal and limitation reasons surfaced to clients.
const (
	ReasonNoTarget                = "no_target"
	ReasonTargetNotFound          = "target_not_found"
	ReasonTargetBanned            = "target_banned"
	ReasonViewerBanned            = "viewer_banned"
	ReasonBlocked                 = "blocked"
	ReasonAnonymousViewer         = "anonymous_viewer"
	ReasonGuardianBlockAdultMale  = "guardian_block_adult_male"
	ReasonGuardianBlocksStrangers = "guardian_blocks_strangers"
	ReasonNotAuthenticated        = "not_authenticated"
	ReasonInvalidChannelType      = "invalid_channel_type"
)

// PageDecision is the Bouncer's answer to "may viewer V see target T".
type PageDecision struct {
	Allowed             bool        `json:"allowed"`
	HTTPStatus          int         `json:"-"`
	AccessLevel         AccessLevel `json:"accessLevel"`
	Reason              string      `json:"reason,omitempty"`
	IsOwner             bool        `json:"isOwner"`
	IsStranger          bool        `json:"isStranger"`
	CanRequestContact   bool        `json:"canRequestContact"`
	GuardianBlockReason string      `json:"guardianBlockReason,omitempty"`
}

// ContactDecision is the Bouncer's answer to "may V request contact with T".
type ContactDecision struct {
	Allowed         bool   `json:"allowed"`
	HTTPStatus      int    `json:"-"`
	Reason          string `json:"reason,omitempty"`
	GuardianBlocked bool   `json:"guardianBlocked,omitempty"`
}
