package account_test

import (
	"errors"
	"testing"
	"time"

	"coachdesk/internal/domain/account"
)

// TestAccount_Validate tests validation of Account.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		account account.Account
		wantErr error
	}{
		{"valid admin", account.Account{Email: "admin@coachdesk.test", Role: account.RoleAdmin}, nil},
		{"valid advisor", account.Account{Email: "sam@coachdesk.test", Role: account.RoleAdvisor}, nil},
		{"empty email", account.Account{Role: account.RoleAdvisor}, account.ErrEmptyEmail},
		{"no at sign", account.Account{Email: "sam", Role: account.RoleAdvisor}, account.ErrInvalidEmail},
		{"customer role", account.Account{Email: "c@x", Role: "customer"}, account.ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.account.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestAccount_Password tests hashing and verification.
func TestAccount_Password(t *testing.T) {
	var a account.Account
	if err := a.SetPassword("short"); !errors.Is(err, account.ErrPasswordTooShort) {
		t.Fatalf("short password err = %v", err)
	}
	if err := a.SetPassword("correct horse battery"); err != nil {
		t.Fatal(err)
	}
	if err := a.CheckPassword("correct horse battery"); err != nil {
		t.Errorf("CheckPassword(correct) = %v", err)
	}
	if err := a.CheckPassword("wrong horse battery"); !errors.Is(err, account.ErrWrongPassword) {
		t.Errorf("CheckPassword(wrong) = %v", err)
	}
}

// TestAccount_Lockout tests the failed-login lock.
func TestAccount_Lockout(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var a account.Account
	for i := 0; i < account.MaxFailedLogins-1; i++ {
		a.RecordFailedLogin(now)
	}
	if a.IsLocked(now) {
		t.Fatal("locked too early")
	}
	a.RecordFailedLogin(now)
	if !a.IsLocked(now.Add(time.Minute)) {
		t.Fatal("expected lock after max failures")
	}
	if a.IsLocked(now.Add(account.LockoutDuration + time.Second)) {
		t.Fatal("lock should expire")
	}
	a.ResetFailedLogins()
	if a.FailedLogins != 0 || a.IsLocked(now) {
		t.Fatal("reset did not clear the lock")
	}
}
