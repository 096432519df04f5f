package cli

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dashprefs/dashboard"
)

type dashboardFlags struct {
	user         string
	remoteURL    string
	cacheDir     string
	cacheBackend string
	offline      bool
}

func newDashboardCmd(app *App) *cobra.Command {
	f := &dashboardFlags{}
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Inspect and edit a user's dashboard layout",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Cobra runs only the nearest PersistentPreRunE; chain to the root's.
			if root := cmd.Root(); root.PersistentPreRunE != nil {
				if err := root.PersistentPreRunE(cmd, args); err != nil {
					return err
				}
			}
			if f.remoteURL != "" {
				app.Config.Client.RemoteURL = f.remoteURL
			}
			if f.cacheDir != "" {
				app.Config.Client.CacheDir = f.cacheDir
			}
			if f.cacheBackend != "" {
				app.Config.Client.CacheBackend = f.cacheBackend
			}
			return app.Config.Validate()
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.user, "user", "u", "", "user whose dashboard to use")
	pf.StringVar(&f.remoteURL, "remote", "", "preference service URL (overrides client.remote_url)")
	pf.StringVar(&f.cacheDir, "cache-dir", "", "local cache directory")
	pf.StringVar(&f.cacheBackend, "cache-backend", "", "local cache backend: file or sqlite")
	pf.BoolVar(&f.offline, "offline", false, "skip the preference service")

	cmd.AddCommand(
		newShowCmd(app, f),
		newSyncCmd(app, f),
		newResetCmd(app, f),
		newMoveCmd(app, f),
		newToggleCmd(app, f),
		newResizeCmd(app, f),
		newBulkCmd(app, f),
	)
	return cmd
}

func newShowCmd(app *App, f *dashboardFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective layout and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app, f.user, f.offline)
			if err != nil {
				return err
			}
			defer s.Close()

			res := s.load(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source: %s\n", res.Source)
			if res.RemoteErr != nil {
				fmt.Fprintf(out, "remote: %v\n", res.RemoteErr)
			}
			printLayout(out, s.ctl.Configuration())
			return nil
		},
	}
}

func newSyncCmd(app *App, f *dashboardFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull the stored layout from the preference service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app, f.user, f.offline)
			if err != nil {
				return err
			}
			defer s.Close()

			res := s.ctl.ForceSync(cmd.Context(), s.userID)
			out := cmd.OutOrStdout()
			switch res.Status {
			case dashboard.FetchFound:
				fmt.Fprintln(out, "remote layout found; local cache refreshed")
				printLayout(out, s.ctl.Configuration())
			case dashboard.FetchAbsent:
				fmt.Fprintln(out, "no remote layout stored for this user")
				if res.Err != nil {
					fmt.Fprintf(out, "remote: %v\n", res.Err)
				}
			default:
				return fmt.Errorf("sync failed: %w", res.Err)
			}
			return nil
		},
	}
}

func newResetCmd(app *App, f *dashboardFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the local cache and show the default layout (remote is untouched)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app, f.user, true)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ctl.Reset(); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			printLayout(cmd.OutOrStdout(), s.ctl.Configuration())
			return nil
		},
	}
}

// mutate loads the user's dashboard, applies fn and saves the result.
func mutate(cmd *cobra.Command, app *App, f *dashboardFlags, fn func(*dashboard.Controller) error) error {
	s, err := openSession(app, f.user, f.offline)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	s.load(ctx)
	if err := fn(s.ctl); err != nil {
		return err
	}
	res, err := s.save(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if res.RemoteErr != nil {
		fmt.Fprintf(out, "saved locally only: %v\n", res.RemoteErr)
	} else {
		fmt.Fprintln(out, "saved")
	}
	printLayout(out, s.ctl.Configuration())
	return nil
}

func newMoveCmd(app *App, f *dashboardFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "move <cards|widgets> <id> <up|down>",
		Short: "Swap an entry with its neighbour",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := dashboard.ParseKind(args[0])
			if err != nil {
				return err
			}
			id, dir := args[1], args[2]
			if dir != "up" && dir != "down" {
				return fmt.Errorf("direction must be up or down, got %q", dir)
			}
			return mutate(cmd, app, f, func(c *dashboard.Controller) error {
				var err error
				if dir == "up" {
					_, err = c.MoveUp(kind, id)
				} else {
					_, err = c.MoveDown(kind, id)
				}
				if err != nil {
					return fmt.Errorf("move %s: %w", id, err)
				}
				return nil
			})
		},
	}
}

func newToggleCmd(app *App, f *dashboardFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <cards|widgets> <id>",
		Short: "Show or hide one entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := dashboard.ParseKind(args[0])
			if err != nil {
				return err
			}
			return mutate(cmd, app, f, func(c *dashboard.Controller) error {
				if _, err := c.ToggleVisible(kind, args[1]); err != nil {
					return fmt.Errorf("toggle %s: %w", args[1], err)
				}
				return nil
			})
		},
	}
}

func newResizeCmd(app *App, f *dashboardFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resize <id> <xs|small|medium|large|extra-large>",
		Short: "Set the size class of one entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := dashboard.ParseSize(args[1])
			if err != nil {
				return err
			}
			return mutate(cmd, app, f, func(c *dashboard.Controller) error {
				if err := c.Resize(args[0], size); err != nil {
					return fmt.Errorf("resize %s: %w", args[0], err)
				}
				return nil
			})
		},
	}
}

func newBulkCmd(app *App, f *dashboardFlags) *cobra.Command {
	var (
		ids    []string
		all    bool
		size   string
		toggle bool
	)
	cmd := &cobra.Command{
		Use:   "bulk <cards|widgets>",
		Short: "Resize or flip visibility of several entries at once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := dashboard.ParseKind(args[0])
			if err != nil {
				return err
			}
			if len(ids) == 0 && !all {
				return fmt.Errorf("select entries with --ids or --all")
			}
			if size == "" && !toggle {
				return fmt.Errorf("nothing to do: pass --size and/or --toggle-visibility")
			}
			// ToggleSelected flips membership, so a repeated id would cancel itself.
			slices.Sort(ids)
			ids = slices.Compact(ids)
			var sz dashboard.Size
			if size != "" {
				if sz, err = dashboard.ParseSize(size); err != nil {
					return err
				}
			}
			return mutate(cmd, app, f, func(c *dashboard.Controller) error {
				if err := c.BeginEdit(kind); err != nil {
					return err
				}
				if all {
					if err := c.ToggleSelectAll(); err != nil {
						return err
					}
				}
				for _, id := range ids {
					if _, err := c.ToggleSelected(id); err != nil {
						return fmt.Errorf("select %s: %w", id, err)
					}
				}
				if sz != "" {
					if _, err := c.BulkResize(sz); err != nil {
						return err
					}
				}
				if toggle {
					if _, err := c.BulkToggleVisibility(); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "comma-separated ids to select")
	cmd.Flags().BoolVar(&all, "all", false, "select every entry of the collection")
	cmd.Flags().StringVar(&size, "size", "", "size class applied to the selection")
	cmd.Flags().BoolVar(&toggle, "toggle-visibility", false, "flip visibility of each selected entry")
	cmd.MarkFlagsMutuallyExclusive("ids", "all")
	return cmd
}

func printLayout(w io.Writer, cfg dashboard.Configuration) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tORDER\tID\tTITLE\tVISIBLE\tSIZE")
	for _, kind := range []dashboard.Kind{dashboard.KindCards, dashboard.KindWidgets} {
		for _, e := range cfg.Layout.Entries(kind) {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
				kind, e.Order, e.ID, e.Title, yesNo(e.Visible), cfg.Sizes.Get(e.ID))
		}
	}
	_ = tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
