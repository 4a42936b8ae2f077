package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seatrove/seadb/pkg/client"
	"github.com/seatrove/seadb/pkg/models"
	"github.com/seatrove/seadb/pkg/polling"
	"github.com/seatrove/seadb/pkg/utils"
)

var (
	createLocation  string
	createSKU       string
	createTier      string
	createCapacity  int32
	createAdmin     string
	createPassword  string
	createVersion   string
	createStorageMB int64

	updateVersion   string
	updateStorageMB int64
	updatePassword  string
)

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "Manage SeaDB server instances",
}

var instancesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a server instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, group, err := clientAndGroup()
		if err != nil {
			return err
		}

		params := models.ServerForCreate{
			Location: createLocation,
			Tags:     map[string]*string{"managed-by": utils.Ptr("seadb-cli")},
			Properties: &models.ServerPropertiesForCreate{
				AdministratorLogin:         createAdmin,
				AdministratorLoginPassword: createPassword,
				Version:                    createVersion,
				StorageMB:                  createStorageMB,
				CreateMode:                 "Default",
			},
		}
		if createSKU != "" {
			params.SKU = &models.SKU{Name: createSKU, Tier: createTier, Capacity: createCapacity}
		}

		poller, err := c.Instances().BeginCreate(cmd.Context(), group, args[0], params, nil)
		if err != nil {
			return err
		}
		if noWait {
			fmt.Printf("Create accepted for %s (status: %s)\n", args[0], poller.Status())
			return nil
		}
		server, err := waitWithSpinner(cmd.Context(), poller, "creating "+args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Created %s", server.Name)
		if server.Properties != nil && server.Properties.FullyQualifiedDomainName != "" {
			fmt.Printf(" (%s)", server.Properties.FullyQualifiedDomainName)
		}
		fmt.Println()
		return nil
	},
}

var instancesUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Update a server instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, group, err := clientAndGroup()
		if err != nil {
			return err
		}

		params := models.ServerUpdateParameters{
			Properties: &models.ServerPropertiesForUpdate{
				Version:                    updateVersion,
				StorageMB:                  updateStorageMB,
				AdministratorLoginPassword: updatePassword,
			},
		}
		poller, err := c.Instances().BeginUpdate(cmd.Context(), group, args[0], params, nil)
		if err != nil {
			return err
		}
		if noWait {
			fmt.Printf("Update accepted for %s (status: %s)\n", args[0], poller.Status())
			return nil
		}
		if _, err := waitWithSpinner(cmd.Context(), poller, "updating "+args[0]); err != nil {
			return err
		}
		fmt.Printf("Updated %s\n", args[0])
		return nil
	},
}

var instancesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a server instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, group, err := clientAndGroup()
		if err != nil {
			return err
		}
		poller, err := c.Instances().BeginDelete(cmd.Context(), group, args[0], nil)
		if err != nil {
			return err
		}
		if noWait {
			fmt.Printf("Delete accepted for %s (status: %s)\n", args[0], poller.Status())
			return nil
		}
		if _, err := waitWithSpinner(cmd.Context(), poller, "deleting "+args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var instancesStartCmd = &cobra.Command{
	Use:   "start <name>...",
	Short: "Start server instances",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstanceAction(cmd.Context(), args, "starting",
			func(ctx context.Context, c *client.Client, group, name string) (*polling.Poller[client.ActionResponse], error) {
				return c.Instances().BeginStart(ctx, group, name, nil)
			})
	},
}

var instancesShutdownCmd = &cobra.Command{
	Use:   "shutdown <name>...",
	Short: "Shut server instances down",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstanceAction(cmd.Context(), args, "shutting down",
			func(ctx context.Context, c *client.Client, group, name string) (*polling.Poller[client.ActionResponse], error) {
				return c.Instances().BeginShutdown(ctx, group, name, nil)
			})
	},
}

var instancesRestartCmd = &cobra.Command{
	Use:   "restart <name>...",
	Short: "Restart server instances",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstanceAction(cmd.Context(), args, "restarting",
			func(ctx context.Context, c *client.Client, group, name string) (*polling.Poller[client.ActionResponse], error) {
				return c.Instances().BeginRestart(ctx, group, name, nil)
			})
	},
}

var instancesGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show a server instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, group, err := clientAndGroup()
		if err != nil {
			return err
		}
		server, err := c.Instances().Get(cmd.Context(), group, args[0])
		if err != nil {
			return err
		}
		renderInstances([]*models.ServerInstance{&server})
		return nil
	},
}

var instancesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List server instances in the group",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, group, err := clientAndGroup()
		if err != nil {
			return err
		}
		servers, err := c.Instances().List(cmd.Context(), group)
		if err != nil {
			return err
		}
		renderInstances(servers)
		return nil
	},
}

func init() {
	instancesCreateCmd.Flags().StringVar(&createLocation, "location", "", "Region to create the server in")
	instancesCreateCmd.Flags().StringVar(&createSKU, "sku", "", "SKU name")
	instancesCreateCmd.Flags().StringVar(&createTier, "tier", "", "SKU tier")
	instancesCreateCmd.Flags().Int32Var(&createCapacity, "capacity", 0, "SKU capacity (vCores)")
	instancesCreateCmd.Flags().StringVar(&createAdmin, "admin-user", "", "Administrator login")
	instancesCreateCmd.Flags().StringVar(&createPassword, "admin-password", "", "Administrator password")
	instancesCreateCmd.Flags().StringVar(&createVersion, "version", "", "Database engine version")
	instancesCreateCmd.Flags().Int64Var(&createStorageMB, "storage-mb", 0, "Storage size in MB")
	_ = instancesCreateCmd.MarkFlagRequired("location")

	instancesUpdateCmd.Flags().StringVar(&updateVersion, "version", "", "Database engine version")
	instancesUpdateCmd.Flags().Int64Var(&updateStorageMB, "storage-mb", 0, "Storage size in MB")
	instancesUpdateCmd.Flags().StringVar(&updatePassword, "admin-password", "", "Administrator password")

	instancesCmd.AddCommand(instancesCreateCmd)
	instancesCmd.AddCommand(instancesUpdateCmd)
	instancesCmd.AddCommand(instancesDeleteCmd)
	instancesCmd.AddCommand(instancesStartCmd)
	instancesCmd.AddCommand(instancesShutdownCmd)
	instancesCmd.AddCommand(instancesRestartCmd)
	instancesCmd.AddCommand(instancesGetCmd)
	instancesCmd.AddCommand(instancesListCmd)
}

func clientAndGroup() (*client.Client, string, error) {
	c, err := newClient()
	if err != nil {
		return nil, "", err
	}
	group, err := requireGroup()
	if err != nil {
		return nil, "", err
	}
	return c, group, nil
}

// runInstanceAction kicks the action off for every named server and waits
// for all of them in parallel.
func runInstanceAction(
	ctx context.Context,
	names []string,
	verb string,
	begin func(ctx context.Context, c *client.Client, group, name string) (*polling.Poller[client.ActionResponse], error),
) error {
	c, group, err := clientAndGroup()
	if err != nil {
		return err
	}

	pollers := make(map[string]*polling.Poller[client.ActionResponse], len(names))
	for _, name := range names {
		p, err := begin(ctx, c, group, name)
		if err != nil {
			return fmt.Errorf("%s %s: %w", verb, name, err)
		}
		pollers[name] = p
	}
	if noWait {
		fmt.Printf("Accepted for %d server(s)\n", len(pollers))
		return nil
	}

	s := newSpinner(fmt.Sprintf("%s %d server(s)", verb, len(pollers)))
	s.Start()
	defer s.Stop()

	g, gctx := errgroup.WithContext(ctx)
	for name, p := range pollers {
		name, p := name, p
		g.Go(func() error {
			if _, err := p.Result(gctx); err != nil {
				return fmt.Errorf("%s %s: %w", verb, name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Printf("Done %s %d server(s)\n", verb, len(pollers))
	return nil
}

func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + suffix
	return s
}

func waitWithSpinner[T any](ctx context.Context, p *polling.Poller[T], msg string) (T, error) {
	s := newSpinner(msg)
	s.Start()
	defer s.Stop()
	return p.Result(ctx)
}

func renderInstances(servers []*models.ServerInstance) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Location", "State", "Version", "Storage MB", "FQDN"})
	for _, srv := range servers {
		props := utils.SafeDeref(srv.Properties)
		table.Append([]string{
			srv.Name,
			srv.Location,
			props.UserVisibleState,
			props.Version,
			fmt.Sprintf("%d", props.StorageMB),
			props.FullyQualifiedDomainName,
		})
	}
	table.Render()
}
