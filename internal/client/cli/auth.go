package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/avdeenkov/shopsync/internal/client/models"
	"github.com/avdeenkov/shopsync/internal/client/session"
	"github.com/avdeenkov/shopsync/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, password, name and role and creates a new
// account. A successful registration signs the user in, so the cart is
// reloaded to pick up the server copy.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	name, err := getSimpleText(a.reader, "Enter display name (optional)", os.Stdout)
	if err != nil {
		return err
	}

	role, err := getSimpleText(a.reader, "Enter role: customer, seller or courier (default customer)", os.Stdout)
	if err != nil {
		return err
	}
	if role == "" {
		role = string(models.RoleCustomer)
	}

	in := session.RegisterInput{
		Email:    email,
		Password: string(password),
		Name:     name,
		Role:     models.Role(role),
	}
	if err := a.session.Register(ctx, in); err != nil {
		printlnFn("Registration failed:", err)
		return err
	}

	printlnFn("Success!")
	a.cart.Load(ctx)
	return nil
}

// Login prompts for credentials and authenticates. On success the cart is
// reloaded so the server copy replaces the anonymous one.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		printlnFn("Login failed:", err)
		return err
	}

	printlnFn("Logged in.")
	a.cart.Load(ctx)
	return nil
}

// Logout flushes the cart, clears the credential and falls back to the
// anonymous local cart. The session manager treats logout as best-effort
// on the network side, so this never fails.
func (a *App) Logout(ctx context.Context) error {
	a.cart.Flush()
	a.session.Logout(ctx)
	a.cart.Load(ctx)
	printlnFn("Logged out.")
	return nil
}

// Whoami prints the current profile and role.
func (a *App) Whoami(ctx context.Context) error {
	s := a.session.Current()
	if s.Credential == nil {
		printlnFn("Not logged in.")
		return nil
	}
	u := s.Credential.User
	printlnFn(fmt.Sprintf("%s <%s> role=%s status=%s", u.Name, u.Email, u.Role, s.Status))
	return nil
}
