package cli

import (
	"context"
	"fmt"
)

// Profile shows the current user's profile and offers to edit the name.
func (a *App) Profile(ctx context.Context) error {
	me, err := a.users.Me(ctx)
	if err != nil {
		return a.fail(ctx, "profile", err)
	}
	a.println(renderUser(me))

	if !Confirm(a.reader, "Edit name?", a.out) {
		return nil
	}

	first, err := getOptionalText(a.reader, "First name", me.FirstName, a.out)
	if err != nil {
		return err
	}
	last, err := getOptionalText(a.reader, "Last name", me.LastName, a.out)
	if err != nil {
		return err
	}
	if first == nil && last == nil {
		a.println(mutedStyle.Render("Nothing changed."))
		return nil
	}

	upd := me
	if first != nil {
		upd.FirstName = *first
	}
	if last != nil {
		upd.LastName = *last
	}

	saved, err := a.users.Update(ctx, me.ID, upd)
	if err != nil {
		return a.fail(ctx, "profile", err)
	}
	a.println(successStyle.Render(fmt.Sprintf("Profile updated: %s.", displayName(saved))))
	return nil
}

// Users lists all users known to the user service.
func (a *App) Users(ctx context.Context) error {
	us, err := a.users.List(ctx)
	if err != nil {
		return a.fail(ctx, "users", err)
	}
	a.println(renderUsers(us))
	return nil
}
