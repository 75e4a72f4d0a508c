// Package wizard holds the create-user form state machine: three ordered
// steps, per-field validation on every edit, step gating and a single
// guarded submission. It has no rendering; internal/views/wizard draws it.
package wizard

import (
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/digimonnaie/console/internal/client"
)

var (
	ErrStepInvalid   = errors.New("wizard: current step has invalid or missing fields")
	ErrInvalidFields = errors.New("wizard: fields hold validation errors")
	ErrSubmitting    = errors.New("wizard: submission already in progress")
	ErrWrongStep     = errors.New("wizard: not allowed on this step")
)

// Step is a position in the form.
type Step int

const (
	StepIdentity Step = iota
	StepContact
	StepAccount
)

// StepCount is the number of steps.
const StepCount = 3

func (s Step) String() string {
	switch s {
	case StepIdentity:
		return "Identity"
	case StepContact:
		return "Contact"
	case StepAccount:
		return "Account"
	default:
		return "Unknown"
	}
}

// Field identifies one form input.
type Field int

const (
	FieldFullName Field = iota
	FieldBirthDate
	FieldIDCard
	FieldAttachment
	FieldPhone
	FieldAddress
	FieldEmail
	FieldRole
	FieldPassword
)

func (f Field) String() string {
	switch f {
	case FieldFullName:
		return "Full name"
	case FieldBirthDate:
		return "Birth date"
	case FieldIDCard:
		return "ID card number"
	case FieldAttachment:
		return "ID document"
	case FieldPhone:
		return "Phone"
	case FieldAddress:
		return "Address"
	case FieldEmail:
		return "Email"
	case FieldRole:
		return "Role"
	case FieldPassword:
		return "Password"
	default:
		return "Unknown"
	}
}

// Fields lists the inputs shown on each step, in display order.
var Fields = [StepCount][]Field{
	StepIdentity: {FieldFullName, FieldBirthDate, FieldIDCard, FieldAttachment},
	StepContact:  {FieldPhone, FieldAddress, FieldEmail},
	StepAccount:  {FieldRole, FieldPassword},
}

// gates lists, per step, the fields that must be filled and valid before
// leaving that step forward.
var gates = [StepCount][]Field{
	StepIdentity: {FieldBirthDate, FieldIDCard},
	StepContact:  {FieldEmail, FieldPhone},
}

// submitFields must all be filled and valid before submission.
var submitFields = []Field{FieldBirthDate, FieldEmail, FieldPhone, FieldIDCard, FieldRole, FieldPassword}

// generations is shared by every Wizard so a submission generation is
// never reused, not even by a wizard built after another was discarded.
var generations atomic.Uint64

// Status is the submission state.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Values holds everything the form collects.
type Values struct {
	FullName   string
	BirthDate  string
	IDCard     string
	Attachment *client.Attachment
	Phone      string
	Address    string
	Email      string
	Role       string
	Password   string
}

// State is a snapshot of the wizard.
type State struct {
	Step    Step
	Values  Values
	Errors  map[Field]string
	Status  Status
	Message string
}

// Submission is handed to the caller by BeginSubmit. Gen must be passed
// back to Complete.
type Submission struct {
	Gen     uint64
	Payload client.NewUser
}

// Outcome describes a completed submission.
type Outcome struct {
	Created *client.User
	Message string
	Failed  bool
}

// Wizard is owned by a single dialog and is not safe for concurrent use.
type Wizard struct {
	st  State
	gen uint64
	now func() time.Time
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithClock sets the source of "today" for birth date validation.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

// New returns a wizard in its initial state.
func New(opts ...Option) *Wizard {
	w := &Wizard{now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	w.st = initialState()
	return w
}

func initialState() State {
	return State{
		Step:   StepIdentity,
		Values: Values{Role: client.RoleClient},
		Errors: map[Field]string{},
	}
}

// Reset discards all input and any in-flight submission.
func (w *Wizard) Reset() {
	w.gen = generations.Add(1)
	w.st = initialState()
}

// State returns a copy of the current state.
func (w *Wizard) State() State {
	st := w.st
	st.Errors = make(map[Field]string, len(w.st.Errors))
	for f, msg := range w.st.Errors {
		st.Errors[f] = msg
	}
	if w.st.Values.Attachment != nil {
		a := *w.st.Values.Attachment
		st.Values.Attachment = &a
	}
	return st
}

func (w *Wizard) Step() Step { return w.st.Step }
func (w *Wizard) Status() Status { return w.st.Status }
func (w *Wizard) Message() string { return w.st.Message }
func (w *Wizard) Error(f Field) string { return w.st.Errors[f] }
func (w *Wizard) Submitting() bool { return w.st.Status == StatusSubmitting }

// Value returns the text value of f. For FieldAttachment it is the
// attached file's path.
func (w *Wizard) Value(f Field) string {
	v := &w.st.Values
	switch f {
	case FieldFullName:
		return v.FullName
	case FieldBirthDate:
		return v.BirthDate
	case FieldIDCard:
		return v.IDCard
	case FieldAttachment:
		if v.Attachment == nil {
			return ""
		}
		return v.Attachment.Path
	case FieldPhone:
		return v.Phone
	case FieldAddress:
		return v.Address
	case FieldEmail:
		return v.Email
	case FieldRole:
		return v.Role
	case FieldPassword:
		return v.Password
	}
	return ""
}

// Set updates f and re-validates it. An empty value clears the field's
// error; emptiness is only reported when a step is gated.
func (w *Wizard) Set(f Field, value string) {
	v := &w.st.Values
	switch f {
	case FieldFullName:
		v.FullName = value
	case FieldBirthDate:
		v.BirthDate = value
	case FieldIDCard:
		v.IDCard = value
	case FieldAttachment:
		value = strings.TrimSpace(value)
		if value == "" {
			v.Attachment = nil
		} else {
			v.Attachment = &client.Attachment{Name: filepath.Base(value), Path: value}
		}
	case FieldPhone:
		v.Phone = value
	case FieldAddress:
		v.Address = value
	case FieldEmail:
		v.Email = value
	case FieldRole:
		v.Role = value
	case FieldPassword:
		v.Password = value
	default:
		return
	}
	w.setError(f, w.validate(f, value))
}

func (w *Wizard) validate(f Field, value string) string {
	if value == "" {
		return ""
	}
	switch f {
	case FieldBirthDate:
		return ValidateBirthDate(value, w.now())
	case FieldEmail:
		return ValidateEmail(value)
	case FieldPhone:
		return ValidatePhone(value)
	case FieldIDCard:
		return ValidateIDCard(value)
	case FieldPassword:
		return ValidatePassword(value)
	case FieldRole:
		if value != client.RoleClient && value != client.RoleDistributeur {
			return MsgInvalidRole
		}
	}
	return ""
}

func (w *Wizard) setError(f Field, msg string) {
	if msg == "" {
		delete(w.st.Errors, f)
		return
	}
	w.st.Errors[f] = msg
}

// ToggleRole switches the role between client and distributeur.
func (w *Wizard) ToggleRole() {
	if w.st.Values.Role == client.RoleDistributeur {
		w.Set(FieldRole, client.RoleClient)
		return
	}
	w.Set(FieldRole, client.RoleDistributeur)
}

// CanNext reports whether Next would succeed, without marking empty
// fields.
func (w *Wizard) CanNext() bool {
	if w.st.Step >= StepAccount || w.Submitting() {
		return false
	}
	for s := StepIdentity; s <= w.st.Step; s++ {
		for _, f := range gates[s] {
			if w.Value(f) == "" || w.st.Errors[f] != "" {
				return false
			}
		}
	}
	return true
}

// CanSubmit reports whether BeginSubmit would succeed.
func (w *Wizard) CanSubmit() bool {
	if w.st.Step != StepAccount || w.Submitting() {
		return false
	}
	for _, f := range submitFields {
		if w.Value(f) == "" || w.st.Errors[f] != "" {
			return false
		}
	}
	return true
}

// Next advances one step when every gated field of this and all earlier
// steps is filled and valid. Empty gated fields are marked required.
func (w *Wizard) Next() error {
	if w.Submitting() {
		return ErrSubmitting
	}
	if w.st.Step >= StepAccount {
		return ErrWrongStep
	}
	var fields []Field
	for s := StepIdentity; s <= w.st.Step; s++ {
		fields = append(fields, gates[s]...)
	}
	if !w.check(fields) {
		return ErrStepInvalid
	}
	w.st.Step++
	w.st.Message = ""
	return nil
}

// Back moves to the previous step without validating. It is refused
// while a submission is pending.
func (w *Wizard) Back() error {
	if w.Submitting() {
		return ErrSubmitting
	}
	if w.st.Step == StepIdentity {
		return ErrWrongStep
	}
	w.st.Step--
	return nil
}

// BeginSubmit moves to Submitting and returns the payload to send. It is
// refused while another submission is pending, away from the last step,
// or while any submit field is empty or invalid.
func (w *Wizard) BeginSubmit() (Submission, error) {
	if w.Submitting() {
		return Submission{}, ErrSubmitting
	}
	if w.st.Step != StepAccount {
		return Submission{}, ErrWrongStep
	}
	if !w.check(submitFields) {
		w.st.Message = MsgFixErrors
		return Submission{}, ErrInvalidFields
	}
	w.gen = generations.Add(1)
	w.st.Status = StatusSubmitting
	w.st.Message = ""
	return Submission{Gen: w.gen, Payload: w.payload()}, nil
}

// Complete applies the result of the submission identified by gen. It
// reports false and changes nothing when gen is stale, that is, when the
// wizard was reset or closed after BeginSubmit.
//
// On success the wizard folds back to its initial state and the outcome
// carries the created record and a role specific message. On failure the
// entered values are kept and the server message is surfaced.
func (w *Wizard) Complete(gen uint64, created *client.User, err error) (Outcome, bool) {
	if gen != w.gen || !w.Submitting() {
		return Outcome{}, false
	}
	if err != nil {
		w.st.Status = StatusFailed
		w.st.Message = client.UserMessage(err)
		return Outcome{Message: w.st.Message, Failed: true}, true
	}
	out := Outcome{Created: created, Message: SuccessMessage(w.st.Values.Role)}
	w.Reset()
	return out, true
}

// SuccessMessage is shown after a user with the given role is created.
func SuccessMessage(role string) string {
	if role == "" {
		role = client.RoleClient
	}
	r, size := utf8.DecodeRuneInString(role)
	return string(unicode.ToUpper(r)) + role[size:] + " created successfully!"
}

// check marks empty fields as required and reports whether all fields are
// filled and error free.
func (w *Wizard) check(fields []Field) bool {
	ok := true
	for _, f := range fields {
		if w.Value(f) == "" {
			w.st.Errors[f] = MsgRequired
			ok = false
			continue
		}
		if w.st.Errors[f] != "" {
			ok = false
		}
	}
	return ok
}

func (w *Wizard) payload() client.NewUser {
	v := w.st.Values
	var file *client.Attachment
	if v.Attachment != nil {
		a := *v.Attachment
		file = &a
	}
	return client.NewUser{
		FullName:  v.FullName,
		BirthDate: v.BirthDate,
		IDCard:    v.IDCard,
		Phone:     v.Phone,
		Address:   v.Address,
		Email:     v.Email,
		Role:      v.Role,
		Password:  v.Password,
		File:      file,
	}
}
