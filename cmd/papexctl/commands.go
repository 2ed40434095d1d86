package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"papex_backend/internal/auth"
	authservice "papex_backend/internal/auth/service"
	"papex_backend/internal/email"
	"papex_backend/internal/events"
	"papex_backend/internal/leads"
	leadrepo "papex_backend/internal/leads/repository"
	"papex_backend/internal/leads/lifecycle"
	"papex_backend/internal/notification"
	"papex_backend/internal/sms"
	"papex_backend/migrations"
	"papex_backend/platform/branding"
	"papex_backend/platform/config"
	"papex_backend/platform/db"
	"papex_backend/platform/validator"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := db.RunMigrations(cmd.Context(), cfg, migrations.FS); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			statuses, err := db.MigrationStatus(cmd.Context(), cfg, migrations.FS)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tFILE")
			for _, st := range statuses {
				applied := "-"
				if !st.AppliedAt.IsZero() {
					applied = st.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", st.Source.Version, st.State, applied, st.Source.Path)
			}
			return w.Flush()
		},
	})
	return cmd
}

// lifecycleJob runs fn against a lifecycle service whose notifications are
// delivered inline, then waits for every delivery before returning.
func lifecycleJob(use, short string, fn func(ctx context.Context, svc *lifecycle.Service, now time.Time) (lifecycle.Result, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			profile, err := branding.Load(rt.cfg.GetBrandingFile())
			if err != nil {
				return err
			}
			emailSender, err := email.NewSender(rt.cfg, profile)
			if err != nil {
				return err
			}
			smsSender, err := sms.NewSender(rt.cfg, rt.log)
			if err != nil {
				return err
			}

			deliverer := notification.NewService(emailSender, smsSender, profile, rt.cfg)
			dispatcher := notification.NewDispatcher(nil, deliverer, rt.log)
			svc := lifecycle.New(leadrepo.New(rt.pool), deliverer, dispatcher, rt.cfg, rt.log)

			res, err := fn(ctx, svc, time.Now())
			dispatcher.Wait()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "leads=%d emails=%d sms=%d failures=%d\n",
				res.Leads, res.EmailsSent, res.SMSSent, res.Failures)
			return nil
		},
	}
}

func newResendConfirmationsCmd() *cobra.Command {
	return lifecycleJob("resend-today-confirmations", "Resend the confirmation to leads created today",
		func(ctx context.Context, svc *lifecycle.Service, now time.Time) (lifecycle.Result, error) {
			return svc.ResendTodayConfirmations(ctx, now)
		})
}

func newRunRemindersCmd() *cobra.Command {
	return lifecycleJob("run-reminders", "Send the appointment reminders due now",
		func(ctx context.Context, svc *lifecycle.Service, now time.Time) (lifecycle.Result, error) {
			return svc.SendReminders(ctx, now)
		})
}

func newMarkAbsentCmd() *cobra.Command {
	return lifecycleJob("mark-absent", "Mark leads whose appointment has passed as absent",
		func(ctx context.Context, svc *lifecycle.Service, now time.Time) (lifecycle.Result, error) {
			return svc.MarkAbsent(ctx, now)
		})
}

func newCreateUserCmd() *cobra.Command {
	var in authservice.CreateUserInput
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			profile, err := auth.NewModule(rt.pool, rt.cfg, validator.New(), rt.log).Service().CreateUser(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", profile.Email, profile.Role, profile.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "Login email")
	cmd.Flags().StringVar(&in.Password, "password", "", "Initial password")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&in.Role, "role", "ACCUEIL", "ADMIN, ACCUEIL, CONSEILLER, JURISTE or AVOCAT")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSlotCapacityCmd() *cobra.Command {
	var capacity int
	cmd := &cobra.Command{
		Use:   "slot-capacity <dd/mm/yyyy HH:MM>",
		Short: "Set how many appointments a slot accepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			staff := auth.NewModule(rt.pool, rt.cfg, validator.New(), rt.log).StaffDirectory()
			booking := leads.NewModule(rt.pool, events.NewInMemoryBus(rt.log), validator.New(), rt.cfg, staff, rt.log).Booking()
			slot, err := booking.SetCapacity(ctx, args[0], capacity)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s capacity=%d booked=%d remaining=%d\n",
				slot.StartAt.Format(time.RFC3339), slot.Capacity, slot.Booked, slot.Remaining)
			return nil
		},
	}
	cmd.Flags().IntVar(&capacity, "capacity", 1, "Number of appointments allowed")
	return cmd
}
