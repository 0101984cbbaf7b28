package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/dmitrijs2005/passclient/internal/client/client"
	"github.com/dmitrijs2005/passclient/internal/client/models"
	"github.com/dmitrijs2005/passclient/internal/common"
)

// writeClipboard is a test seam for the system clipboard.
var writeClipboard = clipboard.WriteAll

// recordID takes the id from args or asks for it.
func (a *App) recordID(args []string) (models.ID, error) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return models.ID(args[0]), nil
	}
	id, err := getSimpleText(a.reader, "Enter record ID", a.out)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("record id is required")
	}
	return models.ID(id), nil
}

// List fetches the records of the current user and prints those matching
// the optional search term.
func (a *App) List(ctx context.Context, args []string) error {
	recs, err := a.records.List(ctx, "")
	if err != nil {
		return a.fail(ctx, "list", err)
	}
	a.setCache(recs)

	term := strings.Join(args, " ")
	shown := recs.Filter(term)
	a.println(renderRecords(shown))
	if term != "" {
		a.println(mutedStyle.Render(fmt.Sprintf("%d of %d records match %q", len(shown), len(recs), term)))
	}
	return nil
}

// Show prints one record; "-r" reveals the secret.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.recordID(args)
	if err != nil {
		return a.fail(ctx, "show", err)
	}
	reveal := false
	for _, arg := range args {
		if arg == "-r" || arg == "--reveal" {
			reveal = true
		}
	}

	rec, err := a.records.Get(ctx, "", id)
	if err != nil {
		return a.fail(ctx, "show", err)
	}
	a.updateCache(func(rs models.Records) models.Records { return rs.Upsert(rec) })
	a.println(renderRecord(rec, reveal))
	return nil
}

// Add prompts for a new record and stores it.
func (a *App) Add(ctx context.Context) error {
	var rec models.PasswordRecord
	var err error

	if rec.Website, err = getSimpleText(a.reader, "Website", a.out); err != nil {
		return err
	}
	if rec.Username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
		return err
	}
	secret, err := getPassword(a.reader, "Secret value", a.out)
	if err != nil {
		return err
	}
	rec.Value = string(secret)
	common.WipeByteArray(secret)
	if rec.Description, err = getSimpleText(a.reader, "Description (optional)", a.out); err != nil {
		return err
	}

	created, err := a.records.Create(ctx, "", rec)
	if err != nil {
		return a.fail(ctx, "add", err)
	}
	a.updateCache(func(rs models.Records) models.Records { return rs.Upsert(created) })
	a.println(successStyle.Render(fmt.Sprintf("Saved record %s (%s).", created.ID, created.Website)))
	return nil
}

// Edit prompts for new field values; empty answers keep the current value
// and "-" clears the description.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.recordID(args)
	if err != nil {
		return a.fail(ctx, "edit", err)
	}

	current, err := a.records.Get(ctx, "", id)
	if err != nil {
		return a.fail(ctx, "edit", err)
	}

	var patch models.RecordPatch
	if patch.Website, err = getOptionalText(a.reader, "Website", current.Website, a.out); err != nil {
		return err
	}
	if patch.Username, err = getOptionalText(a.reader, "Username", current.Username, a.out); err != nil {
		return err
	}
	secret, err := getPassword(a.reader, "New secret value (empty keeps the current one)", a.out)
	if err != nil {
		return err
	}
	if len(secret) > 0 {
		v := string(secret)
		patch.Value = &v
	}
	common.WipeByteArray(secret)
	if patch.Description, err = getOptionalText(a.reader, "Description", current.Description, a.out); err != nil {
		return err
	}

	if patch.Empty() {
		a.println(mutedStyle.Render("Nothing changed."))
		return nil
	}

	updated, err := a.records.Update(ctx, "", id, patch)
	if err != nil {
		return a.fail(ctx, "edit", err)
	}
	a.updateCache(func(rs models.Records) models.Records { return rs.Upsert(updated) })
	a.println(successStyle.Render(fmt.Sprintf("Updated record %s.", updated.ID)))
	return nil
}

// Delete removes a record after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.recordID(args)
	if err != nil {
		return a.fail(ctx, "delete", err)
	}

	label := id.String()
	if rec, ok := a.cached(id); ok {
		label = fmt.Sprintf("%s (%s)", id, rec.Website)
	}
	if !Confirm(a.reader, fmt.Sprintf("Delete record %s?", label), a.out) {
		a.println(mutedStyle.Render("Cancelled."))
		return nil
	}

	if err := a.records.Delete(ctx, "", id); err != nil {
		return a.fail(ctx, "delete", err)
	}
	a.updateCache(func(rs models.Records) models.Records { return rs.Remove(id) })
	a.println(successStyle.Render(fmt.Sprintf("Deleted record %s.", id)))
	return nil
}

// Copy puts a record's secret on the system clipboard.
func (a *App) Copy(ctx context.Context, args []string) error {
	id, err := a.recordID(args)
	if err != nil {
		return a.fail(ctx, "copy", err)
	}

	rec, ok := a.cached(id)
	if !ok {
		if rec, err = a.records.Get(ctx, "", id); err != nil {
			return a.fail(ctx, "copy", err)
		}
	}

	if err := writeClipboard(rec.Value); err != nil {
		return a.fail(ctx, "copy", client.NewError(client.KindUnknown, "clipboard unavailable: "+err.Error()))
	}
	a.println(successStyle.Render(fmt.Sprintf("Copied the secret of %s to the clipboard.", rec.Website)))
	return nil
}
