package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/noah-isme/educrm-api/internal/dto"
	"github.com/noah-isme/educrm-api/internal/models"
)

var (
	readPasswordFunc = term.ReadPassword

	errHelp = errors.New("help provided")
)

type userCreator interface {
	Create(ctx context.Context, req dto.CreateUserRequest, actorID string) (*models.User, error)
}

type reportBuilder interface {
	Build(ctx context.Context, query dto.ReportQuery, scope models.Scope) (*models.Report, error)
}

type commandLine struct {
	out     io.Writer
	migrate func(ctx context.Context) ([]string, error)
	users   userCreator
	reports reportBuilder
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate                                   - apply pending schema migrations")
	fmt.Fprintln(cli.out, "  createuser -email EMAIL -name NAME -role ROLE [-branch BRANCH] - create a staff account, password is prompted")
	fmt.Fprintln(cli.out, "  pipeline [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-branch BRANCH] - print pipeline counts")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		return cli.runMigrate(ctx)
	case "createuser":
		return cli.runCreateUser(ctx, args[2:])
	case "pipeline":
		return cli.runPipeline(ctx, args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) runMigrate(ctx context.Context) error {
	applied, err := cli.migrate(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(cli.out, "schema is up to date")
		return nil
	}
	for _, version := range applied {
		fmt.Fprintf(cli.out, "applied %s\n", version)
	}
	return nil
}

func (cli *commandLine) runCreateUser(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("createuser", flag.ContinueOnError)
	cmd.SetOutput(cli.out)
	email := cmd.String("email", "", "Login email of the new account.")
	name := cmd.String("name", "", "Full name shown in activity timelines.")
	role := cmd.String("role", string(models.RoleCounselor), "One of super_admin, admin_staff, branch_manager, counselor, admission_officer.")
	branch := cmd.String("branch", "", "Branch the account belongs to.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *email == "" || *name == "" {
		cmd.Usage()
		return errHelp
	}

	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		cmd.Usage()
		return errHelp
	}

	user, err := cli.users.Create(ctx, dto.CreateUserRequest{
		Email:    *email,
		Password: string(pwd),
		FullName: *name,
		Role:     *role,
		Branch:   *branch,
	}, "")
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cli.out, "created %s (%s) with id %s\n", user.Email, user.Role, user.ID)
	return nil
}

func (cli *commandLine) runPipeline(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	cmd.SetOutput(cli.out)
	from := cmd.String("from", "", "First day of the range, defaults to the start of the month.")
	to := cmd.String("to", "", "Last day of the range, defaults to today.")
	branch := cmd.String("branch", "", "Restrict counts to one branch.")
	if err := cmd.Parse(args); err != nil {
		return err
	}

	report, err := cli.reports.Build(ctx, dto.ReportQuery{From: *from, To: *to, Branch: *branch}, models.Scope{UserName: "crm-admin", Role: models.RoleSuperAdmin})
	if err != nil {
		return err
	}

	color.New(color.FgCyan).Fprintf(cli.out, "\n=== Pipeline %s to %s ===\n", report.From, report.To)
	for _, section := range report.Sections {
		color.New(color.FgYellow).Fprintf(cli.out, "\n%s (%d)\n", section.Title, section.Total)
		table := tablewriter.NewWriter(cli.out)
		table.SetHeader([]string{"Group", "Count"})
		for _, group := range section.Groups {
			table.Append([]string{group.Key, strconv.Itoa(group.Count)})
		}
		table.Render()
	}
	return nil
}
