package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cd-library/lending"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool
	dbPath  string

	// Logger
	logger *zap.Logger
)

// rootCmd launches the interactive menu when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "cdlibrary",
	Short: "Inventory and lending tracker for a small CD library",
	Long: `cdlibrary registers customers, logs them in by ID and email, lends and
returns CD copies, computes overdue fees and lists stock.

State lives in a local SQLite database; the starter catalog is seeded on
first run. Run without arguments to start the interactive menu.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := lending.LoadConfig()
		logCfg := zap.NewProductionConfig()
		// Keep the interactive menu clean: log to a file, not the terminal.
		logCfg.OutputPaths = []string{cfg.LogPath}
		logCfg.ErrorOutputPaths = []string{cfg.LogPath}
		if verbose {
			logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = logCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the database file (overrides CDLIB_DB_PATH)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// menuOption tags each menu entry so dispatch is an explicit match rather
// than scattered string comparisons.
type menuOption string

const (
	optExit       menuOption = "0"
	optRegister   menuOption = "1"
	optLogin      menuOption = "2"
	optBorrow     menuOption = "3"
	optReturn     menuOption = "4"
	optList       menuOption = "5"
	optReturnPick menuOption = "6"
)

func runShell() error {
	cfg := lending.LoadConfig()
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	db, err := lending.NewDatabase(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	engine := lending.NewEngine(db, cfg)

	scanner := bufio.NewScanner(os.Stdin)
	var session *lending.Session

	fmt.Println(titleStyle.Render("CD Library"))
	for {
		printMenu(session)
		fmt.Print("Choose an option: ")
		if !scanner.Scan() {
			return nil
		}

		switch menuOption(strings.TrimSpace(scanner.Text())) {
		case optRegister:
			handleRegister(scanner, db)
		case optLogin:
			session = handleLogin(scanner, db)
		case optBorrow:
			if requireLogin(session) {
				handleBorrow(scanner, engine, session)
			}
		case optReturn:
			if requireLogin(session) {
				handleReturnByNumber(scanner, engine)
			}
		case optList:
			handleListCDs(db)
		case optReturnPick:
			if requireLogin(session) {
				handleReturnByPick(scanner, db, engine, session)
			}
		case optExit:
			fmt.Println("Goodbye!")
			return nil
		default:
			fmt.Println(errStyle.Render("Invalid option. Please try again."))
		}
	}
}

func printMenu(session *lending.Session) {
	fmt.Println("\nOptions:")
	fmt.Println("1. Register")
	fmt.Println("2. Login")
	fmt.Println("3. Borrow CD")
	fmt.Println("4. Return CD (by borrow number)")
	fmt.Println("5. List All CDs")
	fmt.Println("6. Return CD (pick from your loans)")
	fmt.Println("0. Exit")
	if session != nil {
		fmt.Println(mutedStyle.Render("Logged in as " + session.Name))
	}
}

func requireLogin(session *lending.Session) bool {
	if session == nil {
		fmt.Println(warnStyle.Render("Please log in first."))
		return false
	}
	return true
}

func prompt(sc *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

func handleRegister(sc *bufio.Scanner, db *lending.Database) {
	id, ok := prompt(sc, "Enter customer ID: ")
	if !ok {
		return
	}
	firstName, ok := prompt(sc, "Enter first name: ")
	if !ok {
		return
	}
	lastName, ok := prompt(sc, "Enter last name: ")
	if !ok {
		return
	}
	email, ok := prompt(sc, "Enter email: ")
	if !ok {
		return
	}

	if err := db.RegisterCustomer(id, firstName, lastName, email); err != nil {
		if errors.Is(err, lending.ErrDuplicateCustomerID) {
			fmt.Println(errStyle.Render("Customer with this ID already exists."))
		} else {
			fmt.Println(errStyle.Render("Error: " + err.Error()))
		}
		return
	}
	fmt.Println(okStyle.Render("Customer added successfully."))
}

// handleLogin returns the new session, or nil on failure so any previous
// session is dropped either way.
func handleLogin(sc *bufio.Scanner, db *lending.Database) *lending.Session {
	id, ok := prompt(sc, "Enter customer ID: ")
	if !ok {
		return nil
	}
	email, ok := prompt(sc, "Enter email: ")
	if !ok {
		return nil
	}

	session, err := db.Authenticate(id, email)
	if err != nil {
		fmt.Println(errStyle.Render("Invalid ID or email."))
		return nil
	}
	fmt.Println(okStyle.Render("Login successful."))
	return session
}

func handleBorrow(sc *bufio.Scanner, engine *lending.Engine, session *lending.Session) {
	input, ok := prompt(sc, "Enter CD ID: ")
	if !ok {
		return
	}
	cdID, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		fmt.Println(errStyle.Render("Invalid CD ID: " + input))
		return
	}

	number, err := engine.Borrow(cdID, session.CustomerID)
	switch {
	case errors.Is(err, lending.ErrCDNotFound):
		fmt.Println(errStyle.Render("CD does not exist."))
	case errors.Is(err, lending.ErrCDUnavailable):
		fmt.Println(errStyle.Render("CD is not available."))
	case err != nil:
		fmt.Println(errStyle.Render("Error: " + err.Error()))
	default:
		fmt.Println(okStyle.Render(fmt.Sprintf("CD borrowed successfully. Your borrow number is %d.", number)))
	}
}

func handleReturnByNumber(sc *bufio.Scanner, engine *lending.Engine) {
	input, ok := prompt(sc, "Enter borrow number: ")
	if !ok {
		return
	}
	number, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		fmt.Println(errStyle.Render("Invalid borrow number: " + input))
		return
	}

	receipt, err := engine.Return(number)
	printReceipt(receipt, err)
}

func handleReturnByPick(sc *bufio.Scanner, db *lending.Database, engine *lending.Engine, session *lending.Session) {
	loans, err := db.OpenLoansFor(session.CustomerID)
	if err != nil {
		fmt.Println(errStyle.Render("Error: " + err.Error()))
		return
	}
	if len(loans) == 0 {
		fmt.Println(warnStyle.Render("You have no CDs to return."))
		return
	}

	fmt.Println("Your borrowed CDs:")
	for i, loan := range loans {
		title := fmt.Sprintf("CD %d", loan.CDID)
		if cd, err := db.GetCD(loan.CDID); err == nil {
			title = cd.Name
		}
		fmt.Printf("%d. %s (borrowed %s)\n", i+1, title, loan.BorrowDate)
	}

	input, ok := prompt(sc, "Pick a number to return: ")
	if !ok {
		return
	}
	pick, err := strconv.Atoi(input)
	if err != nil {
		fmt.Println(errStyle.Render("Invalid selection: " + input))
		return
	}

	receipt, err := engine.ReturnByPosition(session.CustomerID, pick)
	printReceipt(receipt, err)
}

func printReceipt(receipt *lending.ReturnReceipt, err error) {
	switch {
	case errors.Is(err, lending.ErrBorrowNotFound):
		fmt.Println(errStyle.Render("Borrow record does not exist."))
	case errors.Is(err, lending.ErrAlreadyReturned):
		fmt.Println(errStyle.Render("This CD was already returned."))
	case err != nil:
		fmt.Println(errStyle.Render("Error: " + err.Error()))
	default:
		fmt.Println(okStyle.Render(fmt.Sprintf("CD '%s' returned successfully.", receipt.CDName)))
		if receipt.OverdueFee > 0 {
			fmt.Println(warnStyle.Render(fmt.Sprintf("Overdue fee: $%.2f", receipt.OverdueFee)))
		}
	}
}

func handleListCDs(db *lending.Database) {
	cds, err := db.ListCDs()
	if err != nil {
		fmt.Println(errStyle.Render("Error: " + err.Error()))
		return
	}
	if len(cds) == 0 {
		fmt.Println(errStyle.Render("No CDs found."))
		return
	}

	fmt.Println(okStyle.Render("Available CDs:"))
	fmt.Printf("%-5s %-30s %-15s %-6s %s\n", "ID", "Title", "Artist", "Year", "Status")
	fmt.Println(strings.Repeat("-", 75))
	for _, cd := range cds {
		status := okStyle.Render("Available")
		if cd.Quantity == 0 {
			status = errStyle.Render("Out of stock")
		}
		fmt.Printf("%-5d %-30s %-15s %-6d %s\n",
			cd.ID, truncateString(cd.Name, 30), truncateString(cd.Artist, 15), cd.ReleasedYear, status)
	}
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
