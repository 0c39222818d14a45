package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/cdm-client/internal/constants"
	"github.com/fivetwenty-io/cdm-client/internal/events"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

// NewBootstrapCommand creates the bootstrap command group.
func NewBootstrapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Bootstrap a new cluster",
		Long:  "Discover unconfigured nodes, bootstrap them into a cluster and follow the bootstrap progress",
	}

	cmd.AddCommand(newBootstrapSetupCommand())
	cmd.AddCommand(newBootstrapStatusCommand())
	cmd.AddCommand(newBootstrapDiscoverCommand())

	return cmd
}

type bootstrapSetupOptions struct {
	file              string
	clusterName       string
	adminEmail        string
	adminPassword     string
	gateway           string
	subnetMask        string
	nodes             []string
	searchDomains     []string
	nameservers       []string
	ntpServers        []string
	disableEncryption bool
	noWait            bool
	natsURL           string
	retryInterval     time.Duration
	pollInterval      time.Duration
	maxAttempts       int
}

func newBootstrapSetupCommand() *cobra.Command {
	opts := &bootstrapSetupOptions{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Bootstrap a cluster",
		Long: `Submit a bootstrap request to the node and wait until the cluster reports
success or failure. Settings may be read from a YAML file with --from-file;
flags override values from the file.`,
		Example: `  cdm bootstrap setup --node 10.0.0.11 --cluster-name prod \
    --admin-email ops@example.com --management-gateway 10.0.0.1 \
    --management-subnet-mask 255.255.255.0 \
    --node-config RVM001=10.0.0.11 --node-config RVM002=10.0.0.12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bootstrapConfig, err := buildBootstrapConfig(cmd, opts)
			if err != nil {
				return err
			}

			cfg := clientConfig()
			cfg.BootstrapRetryInterval = opts.retryInterval
			cfg.BootstrapPollInterval = opts.pollInterval
			cfg.BootstrapMaxAttempts = opts.maxAttempts

			if opts.natsURL != "" {
				observer, err := events.Connect(opts.natsURL, cfg.Logger)
				if err != nil {
					return err
				}

				defer func() { _ = observer.Close() }()

				cfg.BootstrapObserver = observer
			}

			client, err := newBootstrapClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			result, err := client.Setup(cmd.Context(), bootstrapConfig, !opts.noWait)
			if err != nil {
				return fmt.Errorf("failed to bootstrap cluster: %w", err)
			}

			return renderBootstrapResult(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "from-file", "f", "", "read bootstrap settings from a YAML file")
	cmd.Flags().StringVar(&opts.clusterName, "cluster-name", "", "name of the new cluster")
	cmd.Flags().StringVar(&opts.adminEmail, "admin-email", "", "email address of the admin account")
	cmd.Flags().StringVar(&opts.adminPassword, "admin-password", "", "password of the admin account (prompted when empty)")
	cmd.Flags().StringVar(&opts.gateway, "management-gateway", "", "management network gateway")
	cmd.Flags().StringVar(&opts.subnetMask, "management-subnet-mask", "", "management network subnet mask")
	cmd.Flags().StringSliceVar(&opts.nodes, "node-config", nil, "node name and management address as name=ip (repeatable)")
	cmd.Flags().StringSliceVar(&opts.searchDomains, "dns-search-domain", nil, "DNS search domain (repeatable)")
	cmd.Flags().StringSliceVar(&opts.nameservers, "dns-nameserver", nil, "DNS nameserver (default 8.8.8.8)")
	cmd.Flags().StringSliceVar(&opts.ntpServers, "ntp-server", nil, "NTP server (default pool.ntp.org)")
	cmd.Flags().BoolVar(&opts.disableEncryption, "disable-encryption", false, "disable software encryption at rest (required for cloud clusters)")
	cmd.Flags().BoolVar(&opts.noWait, "no-wait", false, "return after the request is accepted")
	cmd.Flags().StringVar(&opts.natsURL, "notify-nats-url", "", "publish bootstrap progress to this NATS server")
	cmd.Flags().DurationVar(&opts.retryInterval, "retry-interval", constants.BootstrapRetryInterval, "wait between submissions while the node refuses connections")
	cmd.Flags().DurationVar(&opts.pollInterval, "poll-interval", constants.BootstrapPollInterval, "wait between status checks")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", constants.BootstrapMaxAttempts, "submissions before giving up on an unreachable node")

	return cmd
}

func newBootstrapStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status [REQUEST_ID]",
		Short: "Show bootstrap status",
		Long:  "Display the status of a bootstrap request. The first request (id 1) is queried by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID := constants.DefaultBootstrapRequestID
			if len(args) > 0 {
				requestID = args[0]
			}

			client, err := newBootstrapClient(cmd.Context(), clientConfig())
			if err != nil {
				return err
			}

			status, err := client.Status(cmd.Context(), requestID)
			if err != nil {
				return fmt.Errorf("failed to get bootstrap status: %w", err)
			}

			return renderProperties(cmd, status, [][]string{
				{"Request ID", requestID},
				{"Status", displayStatus(status.Status)},
				{"Message", status.Message},
			})
		},
	}
}

func newBootstrapDiscoverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Discover nodes",
		Long:  "List the unconfigured nodes the node can reach and that can join a new cluster",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newBootstrapClient(cmd.Context(), clientConfig())
			if err != nil {
				return err
			}

			response, err := client.Discover(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to discover nodes: %w", err)
			}

			rows := make([][]string, 0, len(response.Data))
			for _, node := range response.Data {
				rows = append(rows, []string{node.ID, node.Hostname, node.IPv4, node.IPv6})
			}

			return renderOutput(cmd, response.Data, []string{"ID", "Hostname", "IPv4", "IPv6"}, rows)
		},
	}
}

func buildBootstrapConfig(cmd *cobra.Command, opts *bootstrapSetupOptions) (*cdm.BootstrapConfig, error) {
	bootstrapConfig := &cdm.BootstrapConfig{}

	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read bootstrap file: %w", err)
		}

		err = yaml.Unmarshal(data, bootstrapConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to parse bootstrap file: %w", err)
		}
	}

	overrideString(&bootstrapConfig.ClusterName, opts.clusterName)
	overrideString(&bootstrapConfig.AdminEmail, opts.adminEmail)
	overrideString(&bootstrapConfig.AdminPassword, opts.adminPassword)
	overrideString(&bootstrapConfig.ManagementGateway, opts.gateway)
	overrideString(&bootstrapConfig.ManagementSubnetMask, opts.subnetMask)

	if len(opts.nodes) > 0 {
		nodes, err := parseNodeMappings(opts.nodes)
		if err != nil {
			return nil, err
		}

		bootstrapConfig.NodeConfig = nodes
	}

	if len(opts.searchDomains) > 0 {
		bootstrapConfig.DNSSearchDomains = opts.searchDomains
	}

	if len(opts.nameservers) > 0 {
		bootstrapConfig.DNSNameservers = opts.nameservers
	}

	if len(opts.ntpServers) > 0 {
		bootstrapConfig.NTPServers = opts.ntpServers
	}

	if cmd.Flags().Changed("disable-encryption") {
		bootstrapConfig.EnableEncryption = cdm.Bool(!opts.disableEncryption)
	}

	// Reject an incomplete configuration before asking for a secret.
	_, err := bootstrapConfig.Request()
	if err != nil {
		return nil, err
	}

	if bootstrapConfig.AdminPassword == "" {
		bootstrapConfig.AdminPassword = viper.GetString("admin_password")
	}

	if bootstrapConfig.AdminPassword == "" {
		password, err := promptPassword(cmd)
		if err != nil {
			return nil, err
		}

		bootstrapConfig.AdminPassword = password
	}

	return bootstrapConfig, nil
}

func overrideString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

// parseNodeMappings parses name=ip pairs into a node configuration map.
func parseNodeMappings(entries []string) (map[string]string, error) {
	nodes := make(map[string]string, len(entries))

	for _, entry := range entries {
		name, ip, found := strings.Cut(entry, "=")

		name = strings.TrimSpace(name)
		ip = strings.TrimSpace(ip)

		if !found || name == "" || ip == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidNodeMapping, entry)
		}

		nodes[name] = ip
	}

	return nodes, nil
}

func promptPassword(cmd *cobra.Command) (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return "", constants.ErrPasswordPromptNoTTY
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Admin password: ")

	bytePassword, err := term.ReadPassword(fd)

	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(bytePassword), nil
}

func renderBootstrapResult(cmd *cobra.Command, result *cdm.BootstrapResult) error {
	status := ""

	switch {
	case result.Status != nil:
		status = result.Status.Status
	case result.Submission != nil:
		status = result.Submission.Status
	}

	return renderProperties(cmd, result, [][]string{
		{"Request ID", result.RequestID},
		{"Status", displayStatus(status)},
		{"Already Bootstrapped", strconv.FormatBool(result.AlreadyBootstrapped)},
		{"Message", result.Message},
	})
}
