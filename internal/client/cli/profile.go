package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskforge/internal/authrpc"
	"github.com/dmitrijs2005/taskforge/internal/common"
)

func (a *App) Profile(ctx context.Context) error {
	acc, err := a.client.Profile(ctx)
	if err != nil {
		return a.report(err)
	}
	a.printAccount(acc)
	return nil
}

// UpdateProfile edits name, email, image and password. Empty answers keep
// the current value.
func (a *App) UpdateProfile(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first.")
		return nil
	}

	name, err := getSimpleText(a.reader, "New name (empty to keep)", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "New email (empty to keep)", a.out)
	if err != nil {
		return err
	}
	image, err := getSimpleText(a.reader, "New profile image URL (empty to keep)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("New password (empty to keep)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	acc, err := a.client.UpdateProfile(ctx, &authrpc.UpdateProfileRequest{
		Name:            name,
		Email:           email,
		ProfileImageURL: image,
		Password:        string(password),
	})
	if err != nil {
		return a.report(err)
	}

	if acc != nil && acc.Email != "" {
		a.email = acc.Email
	}
	fmt.Fprintln(a.out, "Profile updated.")
	a.printAccount(acc)
	return nil
}
