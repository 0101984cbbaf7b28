package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/passclient/internal/client/models"
	"github.com/dmitrijs2005/passclient/internal/common"
)

// Register prompts for a new account and creates it. With auto-login the
// new session is opened right away; otherwise the user is sent to login.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	firstName, err := getSimpleText(a.reader, "First name (optional)", a.out)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Last name (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.session.Register(ctx, models.RegisterRequest{
		Username:  username,
		Email:     email,
		Password:  string(password),
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		return a.fail(ctx, "register", err)
	}

	if a.session.IsAuthenticated() {
		a.setCache(nil)
		a.println(successStyle.Render(fmt.Sprintf("Welcome, %s!", displayName(u))))
		return nil
	}
	a.println(successStyle.Render("Account created. Please log in."))
	return nil
}

// Login prompts for email and password and opens a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.session.Login(ctx, email, string(password)); err != nil {
		return a.fail(ctx, "login", err)
	}

	a.setCache(nil)
	u, _ := a.session.CurrentUser()
	a.println(successStyle.Render(fmt.Sprintf("Logged in as %s.", displayName(u))))
	return nil
}

// Logout ends the session. It cannot fail.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	a.setCache(nil)
	a.println("Logged out.")
	return nil
}

// WhoAmI prints the current session without a network call.
func (a *App) WhoAmI(ctx context.Context) error {
	sess, ok := a.session.Session()
	if !ok {
		a.println("Not logged in.")
		return nil
	}
	u, _ := a.session.CurrentUser()

	a.println(field("User", displayName(u)))
	a.println(field("User ID", sess.UserID.String()))
	if sess.Subject != "" {
		a.println(field("Subject", sess.Subject))
	}
	a.println(renderExpiry(sess, time.Now()))
	return nil
}
