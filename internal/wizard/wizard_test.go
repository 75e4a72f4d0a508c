package wizard

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digimonnaie/console/internal/client"
)

func fixedClock() time.Time {
	return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
}

func newWizard() *Wizard {
	return New(WithClock(fixedClock))
}

// filled returns a wizard on the last step with every field valid.
func filled(t *testing.T) *Wizard {
	t.Helper()
	w := newWizard()
	w.Set(FieldFullName, "Awa Diop")
	w.Set(FieldBirthDate, "1990-02-03")
	w.Set(FieldIDCard, "SN12345")
	require.NoError(t, w.Next())
	w.Set(FieldPhone, "771234567")
	w.Set(FieldAddress, "Dakar")
	w.Set(FieldEmail, "awa@example.com")
	require.NoError(t, w.Next())
	w.Set(FieldRole, client.RoleDistributeur)
	w.Set(FieldPassword, "secret1")
	return w
}

func TestInitialState(t *testing.T) {
	w := newWizard()
	st := w.State()
	assert.Equal(t, StepIdentity, st.Step)
	assert.Equal(t, StatusIdle, st.Status)
	assert.Equal(t, client.RoleClient, st.Values.Role)
	assert.Empty(t, st.Errors)
	assert.Empty(t, st.Message)
}

func TestFutureBirthDateBlocksNext(t *testing.T) {
	w := newWizard()
	w.Set(FieldIDCard, "SN12345")
	w.Set(FieldBirthDate, "2999-01-01")

	assert.Equal(t, MsgDateInFuture, w.Error(FieldBirthDate))
	assert.False(t, w.CanNext())
	assert.ErrorIs(t, w.Next(), ErrStepInvalid)
	assert.Equal(t, StepIdentity, w.Step())
}

func TestNextFromIdentity(t *testing.T) {
	tests := []struct {
		name   string
		birth  string
		idCard string
		ok     bool
	}{
		{"valid", "1990-02-03", "SN12345", true},
		{"birth date today", "2026-10-16", "SN12345", true},
		{"empty birth date", "", "SN12345", false},
		{"future birth date", "2026-10-17", "SN12345", false},
		{"empty id card", "1990-02-03", "", false},
		{"short id card", "1990-02-03", "SN1", false},
		{"id card with symbols", "1990-02-03", "SN-12345", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWizard()
			w.Set(FieldBirthDate, tt.birth)
			w.Set(FieldIDCard, tt.idCard)

			assert.Equal(t, tt.ok, w.CanNext())
			err := w.Next()
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, StepContact, w.Step())
				return
			}
			require.ErrorIs(t, err, ErrStepInvalid)
			assert.Equal(t, StepIdentity, w.Step())
		})
	}
}

func TestNextMarksEmptyRequired(t *testing.T) {
	w := newWizard()
	require.ErrorIs(t, w.Next(), ErrStepInvalid)
	assert.Equal(t, MsgRequired, w.Error(FieldBirthDate))
	assert.Equal(t, MsgRequired, w.Error(FieldIDCard))
	assert.Empty(t, w.Error(FieldFullName), "full name is not gated")

	w.Set(FieldBirthDate, "1990-02-03")
	assert.Empty(t, w.Error(FieldBirthDate), "editing re-validates and clears")
}

func TestNextFromContact(t *testing.T) {
	w := newWizard()
	w.Set(FieldBirthDate, "1990-02-03")
	w.Set(FieldIDCard, "SN12345")
	require.NoError(t, w.Next())

	w.Set(FieldEmail, "bad@")
	assert.Equal(t, MsgInvalidEmail, w.Error(FieldEmail))
	w.Set(FieldEmail, "a@b.co")
	assert.Empty(t, w.Error(FieldEmail))

	w.Set(FieldPhone, "12345")
	assert.Equal(t, MsgInvalidPhone, w.Error(FieldPhone))
	assert.ErrorIs(t, w.Next(), ErrStepInvalid)

	w.Set(FieldPhone, "12345678")
	assert.Empty(t, w.Error(FieldPhone))
	require.NoError(t, w.Next())
	assert.Equal(t, StepAccount, w.Step())
	assert.ErrorIs(t, w.Next(), ErrWrongStep)
}

func TestBackIsUnconditional(t *testing.T) {
	w := filled(t)
	w.Set(FieldEmail, "broken")

	require.NoError(t, w.Back())
	assert.Equal(t, StepContact, w.Step())
	require.NoError(t, w.Back())
	assert.Equal(t, StepIdentity, w.Step())
	assert.ErrorIs(t, w.Back(), ErrWrongStep)
	assert.Equal(t, "broken", w.Value(FieldEmail), "back must not discard values")
}

func TestSubmitRejectedWhileErrors(t *testing.T) {
	for _, f := range submitFields {
		t.Run(f.String(), func(t *testing.T) {
			w := filled(t)
			w.st.Errors[f] = "broken"

			assert.False(t, w.CanSubmit())
			_, err := w.BeginSubmit()
			require.ErrorIs(t, err, ErrInvalidFields)
			assert.Equal(t, StatusIdle, w.Status())
			assert.Equal(t, MsgFixErrors, w.Message())
		})
	}
}

func TestSubmitRejectedEmptyPassword(t *testing.T) {
	w := filled(t)
	w.Set(FieldPassword, "")

	_, err := w.BeginSubmit()
	require.ErrorIs(t, err, ErrInvalidFields)
	assert.Equal(t, MsgRequired, w.Error(FieldPassword))
}

func TestSubmitOnlyFromLastStep(t *testing.T) {
	w := newWizard()
	_, err := w.BeginSubmit()
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestDoubleSubmitYieldsOneSubmission(t *testing.T) {
	w := filled(t)

	sub, err := w.BeginSubmit()
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitting, w.Status())
	assert.False(t, w.CanSubmit())

	_, err = w.BeginSubmit()
	require.ErrorIs(t, err, ErrSubmitting)
	assert.ErrorIs(t, w.Next(), ErrSubmitting)

	assert.Equal(t, client.NewUser{
		FullName:  "Awa Diop",
		BirthDate: "1990-02-03",
		IDCard:    "SN12345",
		Phone:     "771234567",
		Address:   "Dakar",
		Email:     "awa@example.com",
		Role:      client.RoleDistributeur,
		Password:  "secret1",
	}, sub.Payload)
}

func TestPayloadCarriesAttachment(t *testing.T) {
	w := filled(t)
	w.Set(FieldAttachment, "/tmp/scans/id-front.png")

	sub, err := w.BeginSubmit()
	require.NoError(t, err)
	require.NotNil(t, sub.Payload.File)
	assert.Equal(t, client.Attachment{Name: "id-front.png", Path: "/tmp/scans/id-front.png"}, *sub.Payload.File)
}

func TestFailureKeepsValues(t *testing.T) {
	w := filled(t)
	before := w.State().Values

	sub, err := w.BeginSubmit()
	require.NoError(t, err)

	apiErr := &client.APIError{Method: "POST", Path: "/users", Status: 409, Message: "Email already exists"}
	out, ok := w.Complete(sub.Gen, nil, apiErr)
	require.True(t, ok)
	assert.True(t, out.Failed)
	assert.Equal(t, "Email already exists", out.Message)
	assert.Equal(t, "Email already exists", w.Message())
	assert.Equal(t, StatusFailed, w.Status())
	assert.Equal(t, StepAccount, w.Step())
	if diff := cmp.Diff(before, w.State().Values); diff != "" {
		t.Errorf("values changed after failure (-want +got):\n%s", diff)
	}

	// Retry is allowed.
	_, err = w.BeginSubmit()
	require.NoError(t, err)
}

func TestFailureWithoutServerMessage(t *testing.T) {
	w := filled(t)
	sub, err := w.BeginSubmit()
	require.NoError(t, err)

	out, ok := w.Complete(sub.Gen, nil, errors.New("dial tcp: connection refused"))
	require.True(t, ok)
	assert.Equal(t, client.GenericServerError, out.Message)
}

func TestSuccessResetsToInitialState(t *testing.T) {
	w := filled(t)
	sub, err := w.BeginSubmit()
	require.NoError(t, err)

	created := &client.User{ID: "u1", FullName: "Awa Diop", Role: client.RoleDistributeur}
	out, ok := w.Complete(sub.Gen, created, nil)
	require.True(t, ok)
	assert.False(t, out.Failed)
	assert.Same(t, created, out.Created)
	assert.Equal(t, "Distributeur created successfully!", out.Message)

	if diff := cmp.Diff(newWizard().State(), w.State()); diff != "" {
		t.Errorf("state after success differs from initial (-want +got):\n%s", diff)
	}
}

func TestResetEqualsInitial(t *testing.T) {
	w := filled(t)
	w.Set(FieldEmail, "bad@")
	w.Reset()

	if diff := cmp.Diff(newWizard().State(), w.State()); diff != "" {
		t.Errorf("reset state differs from initial (-want +got):\n%s", diff)
	}
}

func TestStaleCompletionIgnored(t *testing.T) {
	w := filled(t)
	sub, err := w.BeginSubmit()
	require.NoError(t, err)

	w.Reset()
	_, ok := w.Complete(sub.Gen, &client.User{ID: "late"}, nil)
	assert.False(t, ok)
	assert.Equal(t, StatusIdle, w.Status())
	assert.Equal(t, StepIdentity, w.Step())
}

func TestRoleValidation(t *testing.T) {
	w := newWizard()
	w.Set(FieldRole, "admin")
	assert.Equal(t, MsgInvalidRole, w.Error(FieldRole))
	w.Set(FieldRole, client.RoleDistributeur)
	assert.Empty(t, w.Error(FieldRole))
}

func TestSuccessMessage(t *testing.T) {
	assert.Equal(t, "Client created successfully!", SuccessMessage(client.RoleClient))
	assert.Equal(t, "Distributeur created successfully!", SuccessMessage(client.RoleDistributeur))
	assert.Equal(t, "Client created successfully!", SuccessMessage(""))
}

func TestStateIsACopy(t *testing.T) {
	w := filled(t)
	w.Set(FieldAttachment, "/tmp/a.png")
	st := w.State()
	st.Errors[FieldEmail] = "mutated"
	st.Values.Attachment.Path = "/elsewhere"

	assert.Empty(t, w.Error(FieldEmail))
	assert.Equal(t, "/tmp/a.png", w.Value(FieldAttachment))
}

func TestBackRefusedWhileSubmitting(t *testing.T) {
	w := filled(t)
	sub, err := w.BeginSubmit()
	require.NoError(t, err)

	assert.ErrorIs(t, w.Back(), ErrSubmitting)
	assert.Equal(t, StepAccount, w.Step())

	apiErr := &client.APIError{Method: "POST", Path: "/users", Status: 409, Message: "Email already exists"}
	_, ok := w.Complete(sub.Gen, nil, apiErr)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, w.Status())
	assert.Equal(t, StepAccount, w.Step(), "a failed submission stays on the last step")

	require.NoError(t, w.Back(), "back is allowed again once the request finished")
}

func TestGenerationsNotReusedAcrossWizards(t *testing.T) {
	old := filled(t)
	old.Reset()
	old = refill(t, old)
	oldSub, err := old.BeginSubmit()
	require.NoError(t, err)

	fresh := filled(t)
	fresh.Reset()
	fresh = refill(t, fresh)
	freshSub, err := fresh.BeginSubmit()
	require.NoError(t, err)

	assert.NotEqual(t, oldSub.Gen, freshSub.Gen)

	_, ok := fresh.Complete(oldSub.Gen, &client.User{ID: "from-discarded-wizard"}, nil)
	assert.False(t, ok, "a result from another wizard must be ignored")
	assert.True(t, fresh.Submitting())

	out, ok := fresh.Complete(freshSub.Gen, nil, &client.APIError{Status: 409, Message: "Email already exists"})
	require.True(t, ok)
	assert.Equal(t, "Email already exists", out.Message)
}

// refill enters valid values into a reset wizard and moves it to the
// last step.
func refill(t *testing.T, w *Wizard) *Wizard {
	t.Helper()
	w.Set(FieldBirthDate, "1990-02-03")
	w.Set(FieldIDCard, "SN12345")
	require.NoError(t, w.Next())
	w.Set(FieldPhone, "771234567")
	w.Set(FieldEmail, "awa@example.com")
	require.NoError(t, w.Next())
	w.Set(FieldPassword, "secret1")
	return w
}

func TestSubmitRequiresValidRole(t *testing.T) {
	for _, role := range []string{"admin", ""} {
		w := filled(t)
		w.Set(FieldRole, role)

		assert.False(t, w.CanSubmit(), "role %q", role)
		_, err := w.BeginSubmit()
		assert.ErrorIs(t, err, ErrInvalidFields, "role %q", role)
		assert.NotEmpty(t, w.Error(FieldRole))
	}
}

func TestToggleRole(t *testing.T) {
	w := newWizard()
	assert.Equal(t, client.RoleClient, w.Value(FieldRole))
	w.ToggleRole()
	assert.Equal(t, client.RoleDistributeur, w.Value(FieldRole))
	w.Set(FieldRole, "admin")
	w.ToggleRole()
	assert.Equal(t, client.RoleDistributeur, w.Value(FieldRole))
	assert.Empty(t, w.Error(FieldRole))
	w.ToggleRole()
	assert.Equal(t, client.RoleClient, w.Value(FieldRole))
}

func TestSuccessMessageMultibyteRole(t *testing.T) {
	assert.Equal(t, "Épargnant created successfully!", SuccessMessage("épargnant"))
}
