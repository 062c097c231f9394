package store

import "time"

// MailHandler identifies which of the three mail-routing strategies a
// member's inbound mail takes: forwarded off-site, delivered to the
// department Pip server, or delivered to the college Hades server.
type MailHandler string

const (
	MailHandlerForward MailHandler = "forward"
	MailHandlerPip     MailHandler = "pip"
	MailHandlerHades   MailHandler = "hades"
)

// Member is a Raven-authenticated individual, who may or may not have
// accepted the membership agreement (Member) or been allocated a UNIX
// account (User).
type Member struct {
	CRSid         string
	PreferredName *string
	Surname       *string
	Email         *string
	MailHandler   MailHandler
	IsMember      bool
	IsUser        bool
	Danger        bool
	Notes         string
	UID           *int32
	GID           *int32
	JoinedAt      *time.Time
	ModifiedAt    time.Time
}

// Name joins PreferredName and Surname the way the original hybrid
// property does, returning an empty string if either half is unset.
func (m Member) Name() string {
	if m.PreferredName == nil || m.Surname == nil {
		return ""
	}
	return *m.PreferredName + " " + *m.Surname
}

// Society is a shared account administered by a set of members.
type Society struct {
	Society     string
	Description string
	RoleEmail   *string
	UID         *int32
	GID         *int32
	Danger      bool
	Notes       string
	JoinedAt    time.Time
	ModifiedAt  time.Time
}

// Email returns the society's administrative mailing address.
func (s Society) Email() string {
	return s.Society + "-admins@srcf.net"
}

// PendingAdmin references a CRSid that has been granted admin rights over a
// society before that person has ever logged in (and so has no Member row
// yet).
type PendingAdmin struct {
	CRSid   string
	Society string
}

// DomainClass distinguishes a personal vhost from a society vhost.
type DomainClass string

const (
	DomainClassUser    DomainClass = "user"
	DomainClassSociety DomainClass = "soc"
)

// Domain is a custom vhost mapped onto a member's or society's web root.
type Domain struct {
	ID       int32
	Class    DomainClass
	Owner    string
	Domain   string
	Root     *string
	Wild     bool
	Danger   bool
	LastGood *time.Time
}

// HTTPSCert tracks a domain queued for (or holding) a Let's Encrypt
// certificate.
type HTTPSCert struct {
	ID     int32
	Domain string
	Danger bool
}

// JobState is the life cycle stage of a Job, per the state machine enforced
// by SetJobState.
type JobState string

const (
	JobStateUnapproved JobState = "unapproved"
	JobStateQueued     JobState = "queued"
	JobStateRunning    JobState = "running"
	JobStateDone       JobState = "done"
	JobStateFailed     JobState = "failed"
	JobStateWithdrawn  JobState = "withdrawn"
)

// Job is a unit of administrative work submitted by a member or an
// automated process, dispatched in order by the runner.
type Job struct {
	JobID        int32
	CreatedAt    time.Time
	OwnerCRSid   *string
	Type         string
	State        JobState
	StateMessage *string
	Args         map[string]string
	Environment  *string
}

// LogType categorises a JobLog entry by what point in the job's life cycle
// produced it.
type LogType string

const (
	LogTypeStarted  LogType = "started"
	LogTypeProgress LogType = "progress"
	LogTypeOutput   LogType = "output"
	LogTypeDone     LogType = "done"
	LogTypeFailed   LogType = "failed"
	LogTypeNote     LogType = "note"
)

// LogLevel mirrors the severity levels of Go's slog, persisted alongside
// each JobLog entry so the runner's own structured logs and the job's
// user-facing audit trail share one vocabulary.
type LogLevel string

const (
	LogLevelDebug    LogLevel = "debug"
	LogLevelInfo     LogLevel = "info"
	LogLevelWarning  LogLevel = "warning"
	LogLevelError    LogLevel = "error"
	LogLevelCritical LogLevel = "critical"
)

// JobLogEntry is one line of a job's audit trail.
type JobLogEntry struct {
	LogID   int32
	JobID   int32
	Time    time.Time
	Type    LogType
	Level   LogLevel
	Message string
	Raw     *string
}
