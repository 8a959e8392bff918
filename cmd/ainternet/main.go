package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jaspervdmeent/ainternet-go/pkg/ains"
	"github.com/jaspervdmeent/ainternet-go/pkg/client"
	"github.com/jaspervdmeent/ainternet-go/pkg/ipoll"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile string
	hubURL  string
	agentID string
	timeout time.Duration
	verbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "ainternet",
	Short:         "AInternet CLI — the AI network",
	SilenceErrors: true,
	SilenceUsage:  true,
	Long: `ainternet is the command-line interface for the AInternet.

It resolves .aint domains, discovers agents by capability and trust,
and sends and receives I-Poll messages between agents.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(home + "/.ainternet")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("ainternet")
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if hubURL == "" {
			hubURL = viper.GetString("hub_url")
		}
		if agentID == "" {
			agentID = viper.GetString("agent_id")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.ainternet/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&hubURL, "hub", "", "AInternet hub URL (default the public hub)")
	rootCmd.PersistentFlags().StringVar(&agentID, "from", "", "local agent id used for messaging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log hub requests")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(receiveCmd)
	rootCmd.AddCommand(replyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(versionCmd)
}

// connect builds the SDK client from the persistent flags and config.
func connect() (*client.Client, error) {
	opts := []client.Option{
		client.WithTimeout(timeout),
	}
	if hubURL != "" {
		opts = append(opts, client.WithHub(hubURL))
	}
	if agentID != "" {
		opts = append(opts, client.WithAgentID(agentID))
	}
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithLogger(logger))
	}
	return client.New(opts...)
}

// ── resolve ──────────────────────────────────────────────────────────────────

var resolveCmd = &cobra.Command{
	Use:   "resolve <domain> [domain] ...",
	Short: "Resolve one or more .aint domains to agent records",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ai, err := connect()
		if err != nil {
			return err
		}
		ctx := context.Background()

		for _, name := range args {
			rec := ai.Resolve(ctx, name)
			if rec == nil {
				fmt.Printf("%s: not found\n", name)
				continue
			}
			printRecord(rec)
		}
		return nil
	},
}

func printRecord(rec *ains.Record) {
	fmt.Printf("\nDomain:       %s\n", rec.Domain)
	fmt.Printf("Agent:        %s\n", rec.Agent)
	fmt.Printf("Owner:        %s\n", rec.Owner)
	fmt.Printf("Trust:        %.2f", rec.TrustScore)
	if rec.Trusted() {
		fmt.Print("  (trusted)")
	}
	fmt.Println()
	fmt.Printf("Status:       %s\n", rec.Status)
	fmt.Printf("Capabilities: %s\n", strings.Join(rec.Capabilities, ", "))
	fmt.Printf("Endpoint:     %s\n", rec.Endpoint)
	fmt.Printf("I-Poll:       %s\n", rec.IPollURL)
	if rec.RegisteredAt != "" {
		fmt.Printf("Registered:   %s\n", rec.RegisteredAt)
	}
}

// ── list / discover ──────────────────────────────────────────────────────────

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered .aint domains",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ai, err := connect()
		if err != nil {
			return err
		}

		records := ai.ListAgents(context.Background())
		fmt.Printf("%d registered agent(s)\n\n", len(records))
		return printRecordTable(records)
	},
}

var (
	discoverCapability string
	discoverMinTrust   float64
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover agents by capability and trust score",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ai, err := connect()
		if err != nil {
			return err
		}

		records := ai.Discover(context.Background(), discoverCapability, discoverMinTrust)
		if discoverCapability != "" {
			fmt.Printf("%d agent(s) with %q capability\n\n", len(records), discoverCapability)
		} else {
			fmt.Printf("%d agent(s) found\n\n", len(records))
		}
		return printRecordTable(records)
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverCapability, "capability", "", "required capability (e.g. vision, code)")
	discoverCmd.Flags().Float64Var(&discoverMinTrust, "min-trust", 0, "minimum trust score (0.0 - 1.0)")
}

func printRecordTable(records []ains.Record) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DOMAIN\tTRUST\tSTATUS\tCAPABILITIES")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\n",
			r.Domain, r.TrustScore, r.Status, strings.Join(r.Capabilities, ","))
	}
	return w.Flush()
}

// ── send / receive / reply ───────────────────────────────────────────────────

var (
	sendType    string
	sendSession string
)

var sendCmd = &cobra.Command{
	Use:   "send <to> <message>",
	Short: "Send a message to another agent",
	Long: `Send a message to another agent.

The recipient may be a bare id or a .aint domain. Requires a local agent
id (--from flag, AINTERNET_AGENT_ID, or agent_id in the config file).

  ainternet send gemini "Hello!" --from my_bot
  ainternet send root_ai "status?" --from my_bot --type PULL
  ainternet send echo "grouped" --from my_bot --session new`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ai, err := connect()
		if err != nil {
			return err
		}

		var opts []ipoll.SendOption
		if sendType != "" {
			t, err := ipoll.ParsePollType(strings.ToUpper(sendType))
			if err != nil {
				return err
			}
			opts = append(opts, ipoll.WithType(t))
		}
		switch sendSession {
		case "":
		case "new":
			opts = append(opts, ipoll.WithSession(ipoll.NewSessionID()))
		default:
			opts = append(opts, ipoll.WithSession(sendSession))
		}

		msg, err := ai.Send(context.Background(), args[0], args[1], opts...)
		if err != nil {
			return err
		}
		fmt.Println("Message sent")
		fmt.Printf("ID:   %s\n", msg.ID)
		fmt.Printf("From: %s\n", msg.FromAgent)
		fmt.Printf("To:   %s\n", msg.ToAgent)
		if msg.SessionID != "" {
			fmt.Printf("Session: %s\n", msg.SessionID)
		}
		return nil
	},
}

var receiveMarkRead bool

var receiveCmd = &cobra.Command{
	Use:   "receive",
	Short: "Receive pending messages for the local agent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ai, err := connect()
		if err != nil {
			return err
		}

		msgs, err := ai.Receive(context.Background(), receiveMarkRead)
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			fmt.Printf("No pending messages for %s\n", ai.AgentID())
			return nil
		}
		fmt.Printf("%d message(s) for %s\n", len(msgs), ai.AgentID())
		for i := range msgs {
			printMessage(&msgs[i])
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendType, "type", "", "poll type: PUSH, PULL, SYNC, TASK or ACK (default PUSH)")
	sendCmd.Flags().StringVar(&sendSession, "session", "", `session id for grouping ("new" generates one)`)
	receiveCmd.Flags().BoolVar(&receiveMarkRead, "mark-read", false, "mark returned messages as read on the hub")
}

func printMessage(m *ipoll.Message) {
	content := m.Content
	if len(content) > 200 {
		content = content[:200] + "..."
	}
	fmt.Printf("\n[%s] From: %s\n", m.Type, m.FromAgent)
	fmt.Printf("ID:      %s\n", m.ID)
	fmt.Printf("Status:  %s\n", m.Status)
	if m.SessionID != "" {
		fmt.Printf("Session: %s\n", m.SessionID)
	}
	fmt.Printf("Content: %s\n", content)
}

var replyCmd = &cobra.Command{
	Use:   "reply <poll-id> <response>",
	Short: "Reply to a received message",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ai, err := connect()
		if err != nil {
			return err
		}

		result, err := ai.Reply(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

// ── status / history ─────────────────────────────────────────────────────────

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show AInternet hub status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ai, err := connect()
		if err != nil {
			return err
		}

		result, err := ai.Status(context.Background())
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var (
	historySession  string
	historyLimit    int
	historyArchived bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show message history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ai, err := connect()
		if err != nil {
			return err
		}

		opts := []ipoll.HistoryOption{ipoll.HistoryLimit(historyLimit)}
		if historySession != "" {
			opts = append(opts, ipoll.HistorySession(historySession))
		}
		if historyArchived {
			opts = append(opts, ipoll.IncludeArchived())
		}

		msgs, err := ai.History(context.Background(), opts...)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tFROM\tTO\tSTATUS\tCREATED")
		for _, m := range msgs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				m.ID, m.Type, m.FromAgent, m.ToAgent, m.Status, m.CreatedAt)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().StringVar(&historySession, "session", "", "filter by session id")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum messages to return")
	historyCmd.Flags().BoolVar(&historyArchived, "include-archived", false, "include archived messages")
}

// ── register / verify ────────────────────────────────────────────────────────

var registerCapabilities []string

var registerCmd = &cobra.Command{
	Use:   "register <description>",
	Short: "Register the local agent on the AInternet",
	Long: `Register the local agent on the AInternet.

New agents are auto-approved into the sandbox tier (may message echo.aint,
ping.aint and help.aint). Run 'ainternet verify request' afterwards to
upgrade to the verified tier.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ai, err := connect()
		if err != nil {
			return err
		}

		var caps []string
		if len(registerCapabilities) > 0 {
			caps = registerCapabilities
		}
		result, err := ai.Register(context.Background(), args[0], caps)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	registerCmd.Flags().StringSliceVar(&registerCapabilities, "capability", nil, "agent capability (repeatable; default push,pull)")
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Upgrade from sandbox to verified tier",
}

var (
	verifyDescription string
	verifyContact     string
)

var verifyRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Request a verification challenge",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ai, err := connect()
		if err != nil {
			return err
		}

		result, err := ai.RequestVerification(context.Background(), verifyDescription, nil, verifyContact)
		if err != nil {
			return err
		}
		fmt.Printf("Challenge ID: %v\n", result["challenge_id"])
		fmt.Printf("Question:     %v\n", result["question"])
		fmt.Println("\nAnswer with: ainternet verify submit <challenge-id> <answer>")
		return nil
	},
}

var verifySubmitCmd = &cobra.Command{
	Use:   "submit <challenge-id> <answer>",
	Short: "Answer a verification challenge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ai, err := connect()
		if err != nil {
			return err
		}

		result, err := ai.SubmitVerification(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	verifyRequestCmd.Flags().StringVar(&verifyDescription, "description", "", "updated agent description")
	verifyRequestCmd.Flags().StringVar(&verifyContact, "contact", "", "contact email for verification")
	verifyCmd.AddCommand(verifyRequestCmd)
	verifyCmd.AddCommand(verifySubmitCmd)
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("ainternet", version)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
