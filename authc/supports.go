package authc

import "strings"

const (
	DefaultDialect = "default"
	UsernameClaim  = "username"

	PrimaryStore = "PRIMARY"
)

type (
	// Claim is an asserted identity attribute
	Claim struct {
		dialect string
		uri     string
		value   string
	}

	NameCallback struct {
		prompt string
		name   string
	}

	PasswordCallback struct {
		prompt   string
		echo     bool
		password []rune
	}
)

func NewClaim(dialect string, uri string, value string) Claim {
	return Claim{dialect: dialect, uri: uri, value: value}
}

// NewUsernameClaim builds the claim used by username/password logins
func NewUsernameClaim(username string) Claim {
	return NewClaim(DefaultDialect, UsernameClaim, username)
}

func (c Claim) Dialect() string {
	return c.dialect
}

func (c Claim) URI() string {
	return c.uri
}

func (c Claim) Value() string {
	return c.value
}

func (c Claim) String() string {
	return c.dialect + ":" + c.uri + "=" + c.value
}

func (c Claim) valid() bool {
	return len(strings.TrimSpace(c.value)) != 0
}

var _ Callback = (*NameCallback)(nil)

func NewNameCallback(prompt string) *NameCallback {
	return &NameCallback{prompt: prompt}
}

func (nc *NameCallback) Prompt() string {
	return nc.prompt
}

func (nc *NameCallback) Name() string {
	return nc.name
}

func (nc *NameCallback) SetName(name string) {
	nc.name = name
}

var _ Callback = (*PasswordCallback)(nil)

func NewPasswordCallback(prompt string, echo bool) *PasswordCallback {
	return &PasswordCallback{prompt: prompt, echo: echo}
}

func (pc *PasswordCallback) Prompt() string {
	return pc.prompt
}

// EchoOn reports whether the password may be displayed while typed
func (pc *PasswordCallback) EchoOn() bool {
	return pc.echo
}

// SetPassword stores a copy of password
func (pc *PasswordCallback) SetPassword(password []rune) {
	pc.ClearPassword()
	if password == nil {
		return
	}
	pc.password = make([]rune, len(password))
	copy(pc.password, password)
}

// Password returns a copy of the stored password, nil if none was set
func (pc *PasswordCallback) Password() []rune {
	if pc.password == nil {
		return nil
	}
	result := make([]rune, len(pc.password))
	copy(result, pc.password)
	return result
}

// ClearPassword overwrites the stored password and drops it
func (pc *PasswordCallback) ClearPassword() {
	clear(pc.password)
	pc.password = nil
}
