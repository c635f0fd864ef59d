package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/wardrobix/internal/client/app"
	"github.com/atinyakov/wardrobix/internal/client/notify"
	"github.com/atinyakov/wardrobix/internal/client/outfit"
	"github.com/atinyakov/wardrobix/internal/client/session"
	"github.com/atinyakov/wardrobix/internal/models"
)

const helpText = `Available commands:
  login <username> <password>   sign in
  logout                        sign out
  list                          show your clothing items
  draft                         show the item form
  set <field> <value>           fill the form (name, formality, color, type, subtype)
  add                           create an item from the form, leaving edit mode
  edit <id>                     load an item into the form
  save                          save the item being edited
  cancel                        stop editing
  delete <id>                   delete an item
  params <formality> <city>     set outfit parameters
  generate [<formality> <city>] generate an outfit
  outfit                        show the last outfit
  exit`

// repl runs the interactive shell loop until exit or end of input.
func repl(ctx context.Context, a *app.App, notices *notify.Recorder, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, prompt(a))
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(out, "Bye")
			return
		}

		err := dispatch(ctx, a, out, args)
		// a notice already explains the failure
		pending := notices.Drain()
		for _, n := range pending {
			fmt.Fprintf(out, "! %s\n", n.Message)
		}
		if err != nil && len(pending) == 0 {
			fmt.Fprintln(out, "error:", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func prompt(a *app.App) string {
	if creds, ok := a.Store.Credentials(); ok {
		return "wardrobix(" + creds.Username + ")> "
	}
	return "wardrobix> "
}

func dispatch(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	switch args[0] {
	case "help":
		fmt.Fprintln(out, helpText)
	case "login":
		if len(args) != 3 {
			return errors.New("usage: login <username> <password>")
		}
		if err := a.Auth.Login(ctx, args[1], args[2]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Welcome, %s\n", args[1])
		printItems(out, a)
	case "logout":
		a.Auth.Logout(ctx)
		fmt.Fprintln(out, "Logged out")
	case "list":
		if !a.Store.Authenticated() {
			return session.ErrAnonymous
		}
		printItems(out, a)
	case "draft":
		printDraft(out, a)
	case "set":
		if len(args) < 3 {
			return errors.New("usage: set <field> <value>")
		}
		d := a.Wardrobe.Draft()
		if err := setField(&d, args[1], strings.Join(args[2:], " ")); err != nil {
			return err
		}
		a.Wardrobe.SetDraft(d)
	case "add":
		// add always creates, so an edit in progress becomes a copy
		if _, ok := a.Wardrobe.Editing(); ok {
			d := a.Wardrobe.Draft()
			a.Wardrobe.CancelEdit()
			a.Wardrobe.SetDraft(d)
		}
		if err := a.Wardrobe.Submit(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Item added")
	case "edit":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		it, ok := a.Wardrobe.Find(id)
		if !ok {
			return fmt.Errorf("item #%d not found", id)
		}
		a.Wardrobe.BeginEdit(it)
		printDraft(out, a)
	case "save":
		if _, ok := a.Wardrobe.Editing(); !ok {
			return errors.New("nothing to save, use edit <id> first")
		}
		if err := a.Wardrobe.Submit(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Item updated")
	case "cancel":
		a.Wardrobe.CancelEdit()
		fmt.Fprintln(out, "Edit cancelled")
	case "delete":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		if err := a.Wardrobe.Remove(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(out, "Item deleted")
	case "params":
		if len(args) < 3 {
			return errors.New("usage: params <formality> <city>")
		}
		a.Outfit.SetParams(outfit.Params{Formality: args[1], City: strings.Join(args[2:], " ")})
	case "generate":
		var err error
		switch {
		case len(args) == 1:
			_, err = a.Outfit.Generate(ctx)
		case len(args) >= 3:
			_, err = a.Outfit.GenerateWith(ctx, args[1], strings.Join(args[2:], " "))
		default:
			return errors.New("usage: generate [<formality> <city>]")
		}
		if err != nil {
			return err
		}
		printOutfit(out, a.Outfit.Result())
	case "outfit":
		printOutfit(out, a.Outfit.Result())
	default:
		fmt.Fprintln(out, "Unknown command. Type 'help' for a list of commands.")
	}
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) != 2 {
		return 0, fmt.Errorf("usage: %s <id>", args[0])
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[1], "#"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[1])
	}
	return id, nil
}

func setField(d *models.ClothingFields, field, value string) error {
	switch field {
	case "name":
		d.Name = value
	case "formality":
		d.Formality = value
	case "color":
		d.Color = value
	case "type":
		d.Type = value
	case "subtype":
		d.Subtype = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

func describe(it models.ClothingItem) string {
	return fmt.Sprintf("#%d %s (%s/%s, %s, %s)", it.ID, it.Name, it.Type, it.Subtype, it.Color, it.Formality)
}

func printItems(out io.Writer, a *app.App) {
	items := a.Wardrobe.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "No items yet")
		return
	}
	editing, isEditing := a.Wardrobe.Editing()
	for _, it := range items {
		mark := " "
		if isEditing && it.ID == editing {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %s\n", mark, describe(it))
	}
}

func printDraft(out io.Writer, a *app.App) {
	d := a.Wardrobe.Draft()
	if id, ok := a.Wardrobe.Editing(); ok {
		fmt.Fprintf(out, "Editing #%d\n", id)
	} else {
		fmt.Fprintln(out, "New item")
	}
	fmt.Fprintf(out, "  name:      %s\n  formality: %s\n  color:     %s\n  type:      %s\n  subtype:   %s\n",
		d.Name, d.Formality, d.Color, d.Type, d.Subtype)
}

func printOutfit(out io.Writer, o models.Outfit) {
	items := o.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "No outfit yet")
		return
	}
	fmt.Fprintln(out, "Your outfit:")
	for _, it := range items {
		fmt.Fprintf(out, "  %s\n", describe(it))
	}
}
