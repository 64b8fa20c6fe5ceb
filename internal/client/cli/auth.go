package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskforge/internal/authrpc"
	"github.com/dmitrijs2005/taskforge/internal/common"
)

// Register asks for name, email, password and the optional profile image and
// admin invite token, then creates the account. A verification code is mailed
// on success.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	image, err := getSimpleText(a.reader, "Profile image URL (optional)", a.out)
	if err != nil {
		return err
	}
	invite, err := getSimpleText(a.reader, "Admin invite token (optional)", a.out)
	if err != nil {
		return err
	}

	msg, err := a.client.Register(ctx, &authrpc.RegisterRequest{
		Name:             name,
		Email:            email,
		Password:         string(password),
		ProfileImageURL:  image,
		AdminInviteToken: invite,
	})
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintln(a.out, msg)
	fmt.Fprintln(a.out, "Check your inbox and run 'verify' with the code.")
	return nil
}

// Verify submits the e-mailed code. Success signs the user in.
func (a *App) Verify(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	code, err := getSimpleText(a.reader, "Enter the 6-digit code", a.out)
	if err != nil {
		return err
	}

	acc, err := a.client.VerifyOTP(ctx, email, code)
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintln(a.out, "Email verified successfully!")
	a.printAccount(acc)
	return nil
}

func (a *App) ResendOTP(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	msg, err := a.client.ResendOTP(ctx, email)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) ResendVerification(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	msg, err := a.client.ResendVerification(ctx, email)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	acc, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "Welcome back, %s!\n", acc.Name)
	return nil
}

// ForgotPassword requests a reset link for an address.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	msg, err := a.client.ForgotPassword(ctx, email)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// ResetPassword redeems the token from the reset link.
func (a *App) ResetPassword(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Paste the reset token from the e-mail link", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	msg, err := a.client.ResetPassword(ctx, token, string(password))
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// Logout forgets the in-memory session.
func (a *App) Logout(ctx context.Context) error {
	a.client.Logout()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
