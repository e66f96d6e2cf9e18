// ABOUTME: Operator subcommands for seeding organizations, members, prompts, and keys
// ABOUTME: Each command opens the configured store directly and closes it on return

package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/2389/promptmesh-gateway/internal/auth"
	"github.com/2389/promptmesh-gateway/internal/directory"
	"github.com/2389/promptmesh-gateway/internal/gateway"
	"github.com/2389/promptmesh-gateway/internal/store"
)

// storeOpener opens the store for an admin command. Tests replace it.
var storeOpener = func(ctx context.Context) (store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s, _, err := gateway.OpenStore(ctx, cfg.Database)
	return s, err
}

func runAdmin(ctx context.Context, group, sub string, args []string, out io.Writer) error {
	var cmd func(context.Context, store.Store, []string, io.Writer) error
	switch group + " " + sub {
	case "org create":
		cmd = runOrgCreate
	case "member add":
		cmd = runMemberAdd
	case "prompt create":
		cmd = runPromptCreate
	case "key create":
		cmd = runKeyCreate
	case "key revoke":
		cmd = runKeyRevoke
	case "key list":
		cmd = runKeyList
	default:
		return fmt.Errorf("unknown command: %s %s", group, sub)
	}

	s, err := storeOpener(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	return cmd(ctx, s, args, out)
}

func runOrgCreate(ctx context.Context, s store.Store, args []string, out io.Writer) error {
	flags, err := parseFlags(args, "name", "id")
	if err != nil {
		return err
	}
	if err := flags.require("name"); err != nil {
		return fmt.Errorf("usage: org create --name <name> [--id <id>]: %w", err)
	}

	org, err := directory.NewService(s).CreateOrganization(ctx, directory.NewOrganization{
		ID:   flags.get("id"),
		Name: flags.get("name"),
	})
	if err != nil {
		return err
	}

	_, _ = color.New(color.FgGreen).Fprintf(out, "  ✓ Created organization: %s\n", org.Name)
	_, _ = fmt.Fprintf(out, "  ID: %s\n", org.ID)
	return nil
}

func runMemberAdd(ctx context.Context, s store.Store, args []string, out io.Writer) error {
	flags, err := parseFlags(args, "org", "user", "role")
	if err != nil {
		return err
	}
	if err := flags.require("org", "user", "role"); err != nil {
		return fmt.Errorf("usage: member add --org <id> --user <id> --role <owner|admin|viewer>: %w", err)
	}

	m, err := directory.NewService(s).AddMember(ctx, directory.NewMember{
		OrganizationID: flags.get("org"),
		UserID:         flags.get("user"),
		Role:           flags.get("role"),
	})
	if err != nil {
		return err
	}

	_, _ = color.New(color.FgGreen).Fprintf(out, "  ✓ Added %s as %s of %s\n", m.UserID, m.Role, m.OrganizationID)
	return nil
}

func runPromptCreate(ctx context.Context, s store.Store, args []string, out io.Writer) error {
	flags, err := parseFlags(args, "org", "name", "description", "content", "notes", "creator", "arg")
	if err != nil {
		return err
	}
	if err := flags.require("org", "name", "content", "creator"); err != nil {
		return fmt.Errorf("usage: prompt create --org <id> --name <name> --content <text> --creator <user>: %w", err)
	}

	in := directory.NewPrompt{
		OrganizationID: flags.get("org"),
		Name:           flags.get("name"),
		Description:    flags.get("description"),
		Content:        flags.get("content"),
		Notes:          flags.get("notes"),
		CreatorID:      flags.get("creator"),
	}
	for _, raw := range flags.all("arg") {
		arg, err := directory.ParseArgument(raw)
		if err != nil {
			return err
		}
		in.Arguments = append(in.Arguments, arg)
	}

	created, err := directory.NewService(s).CreatePrompt(ctx, in)
	if err != nil {
		return err
	}

	_, _ = color.New(color.FgGreen).Fprintf(out, "  ✓ Created prompt: %s\n", created.Prompt.Name)
	_, _ = fmt.Fprintf(out, "  ID:        %s\n", created.Prompt.ID)
	_, _ = fmt.Fprintf(out, "  Arguments: %d\n", len(created.Arguments))
	return nil
}

func runKeyCreate(ctx context.Context, s store.Store, args []string, out io.Writer) error {
	flags, err := parseFlags(args, "user", "org", "name")
	if err != nil {
		return err
	}
	if err := flags.require("user", "org", "name"); err != nil {
		return fmt.Errorf("usage: key create --user <id> --org <id> --name <name>: %w", err)
	}

	userID, orgID := flags.get("user"), flags.get("org")
	if _, err := s.GetMember(ctx, orgID, userID); err != nil {
		return fmt.Errorf("user %s is not a member of organization %s: %w", userID, orgID, err)
	}

	issued, err := auth.NewKeyService(s).Issue(ctx, userID, orgID, flags.get("name"))
	if err != nil {
		return err
	}

	_, _ = color.New(color.FgGreen).Fprintf(out, "  ✓ Created API key: %s\n", issued.Key.Name)
	_, _ = fmt.Fprintf(out, "  ID:    %s\n", issued.Key.ID)
	_, _ = fmt.Fprintf(out, "  Token: %s\n", issued.Token)
	_, _ = color.New(color.FgYellow).Fprintln(out, "  Store this token now. It cannot be shown again.")
	return nil
}

func runKeyRevoke(ctx context.Context, s store.Store, args []string, out io.Writer) error {
	flags, err := parseFlags(args, "id")
	if err != nil {
		return err
	}
	if err := flags.require("id"); err != nil {
		return fmt.Errorf("usage: key revoke --id <key-id>: %w", err)
	}

	if err := auth.NewKeyService(s).Revoke(ctx, flags.get("id")); err != nil {
		return err
	}

	_, _ = color.New(color.FgGreen).Fprintf(out, "  ✓ Revoked API key: %s\n", flags.get("id"))
	return nil
}

func runKeyList(ctx context.Context, s store.Store, args []string, out io.Writer) error {
	flags, err := parseFlags(args, "user")
	if err != nil {
		return err
	}
	if err := flags.require("user"); err != nil {
		return fmt.Errorf("usage: key list --user <id>: %w", err)
	}

	keys, err := auth.NewKeyService(s).List(ctx, flags.get("user"))
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		_, _ = fmt.Fprintln(out, "  No active API keys")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "  ID\tNAME\tPREFIX\tORGANIZATION\tCREATED\tLAST USED")
	_, _ = fmt.Fprintln(w, "  --\t----\t------\t------------\t-------\t---------")
	for _, k := range keys {
		lastUsed := "never"
		if k.LastUsedAt != nil {
			lastUsed = k.LastUsedAt.Format(time.DateTime)
		}
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			k.ID, k.Name, k.KeyPrefix, k.OrganizationID, k.CreatedAt.Format(time.DateTime), lastUsed)
	}
	return w.Flush()
}
