package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case []Player:
		o.printPlayers(v)
	case Station:
		o.printStation(v)
	case []Station:
		o.printStations(v)
	case PointLog:
		o.printPointLog(v)
	case []PointLog:
		o.printPointLogs(v)
	case LedgerResult:
		o.printLedgerResult(v)
	case PlayerAudit:
		o.printPlayerAudit(v)
	case []BalanceDrift:
		o.printBalanceDrifts(v)
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Number      string `json:"number"`
	Class       string `json:"class"`
	Points      int64  `json:"points"`
	LastStation string `json:"lastStation,omitempty"`
}

// Station response type
type Station struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Number    string `json:"number"`
	MaxPoints int64  `json:"maxPoints"`
	Status    bool   `json:"status"`
	Delay     int    `json:"delay"`
	Image     string `json:"image,omitempty"`
}

// PointLog response type
type PointLog struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"playerId"`
	StationID   string    `json:"stationId"`
	Points      int64     `json:"points"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description,omitempty"`
	RecordedBy  string    `json:"recordedBy,omitempty"`
}

// Warning response type
type Warning struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// LedgerResult is returned by register, edit and revoke
type LedgerResult struct {
	Entry    PointLog  `json:"entry"`
	Players  []Player  `json:"players"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// PlayerAudit response type
type PlayerAudit struct {
	PlayerID   string `json:"playerId"`
	Cached     int64  `json:"cached"`
	Ledger     int64  `json:"ledger"`
	Consistent bool   `json:"consistent"`
}

// BalanceDrift response type
type BalanceDrift struct {
	PlayerID string `json:"playerId"`
	Number   string `json:"number"`
	Cached   int64  `json:"cached"`
	Ledger   int64  `json:"ledger"`
}

// User response type
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Rank     int    `json:"rank"`
	IsAdmin  bool   `json:"isAdmin"`
}

// AuthResult combines user and token
type AuthResult struct {
	User         User      `json:"user"`
	SessionToken string    `json:"sessionToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// HealthResult is the server's health plus the state of the saved session
type HealthResult struct {
	Status  string `json:"status"`
	Viewers int    `json:"viewers"`
	Session string `json:"session,omitempty"`
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s #%s (%s)\n", p.Name, p.Number, p.ID)
	fmt.Printf("Class: %s\n", p.Class)
	fmt.Printf("Points: %d\n", p.Points)
	if p.LastStation != "" {
		fmt.Printf("Last station: %s\n", p.LastStation)
	}
}

func (o *Output) printPlayers(players []Player) {
	w := newTable()
	fmt.Fprintln(w, "NUMBER\tNAME\tCLASS\tPOINTS\tID")
	for _, p := range players {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", p.Number, p.Name, p.Class, p.Points, p.ID)
	}
	_ = w.Flush()
}

func statusText(open bool) string {
	if open {
		return "open"
	}
	return "closed"
}

func (o *Output) printStation(s Station) {
	fmt.Printf("Station: %s #%s (%s)\n", s.Name, s.Number, s.ID)
	fmt.Printf("Status: %s\n", statusText(s.Status))
	fmt.Printf("Delay: %ds\n", s.Delay)
	fmt.Printf("Max points: %d\n", s.MaxPoints)
}

func (o *Output) printStations(stations []Station) {
	w := newTable()
	fmt.Fprintln(w, "NUMBER\tNAME\tSTATUS\tDELAY\tID")
	for _, s := range stations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%ds\t%s\n", s.Number, s.Name, statusText(s.Status), s.Delay, s.ID)
	}
	_ = w.Flush()
}

func (o *Output) printPointLog(e PointLog) {
	fmt.Printf("Entry: %s\n", e.ID)
	fmt.Printf("Player: %s\n", e.PlayerID)
	fmt.Printf("Station: %s\n", e.StationID)
	fmt.Printf("Points: %+d\n", e.Points)
	fmt.Printf("Time: %s\n", e.Timestamp.Local().Format(time.DateTime))
	if e.Description != "" {
		fmt.Printf("Description: %s\n", e.Description)
	}
}

func (o *Output) printPointLogs(entries []PointLog) {
	w := newTable()
	fmt.Fprintln(w, "TIME\tPLAYER\tSTATION\tPOINTS\tID")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%+d\t%s\n", e.Timestamp.Local().Format(time.DateTime), e.PlayerID, e.StationID, e.Points, e.ID)
	}
	_ = w.Flush()
}

func (o *Output) printLedgerResult(r LedgerResult) {
	o.printPointLog(r.Entry)
	if len(r.Players) > 0 {
		fmt.Println("\nBalances:")
		for _, p := range r.Players {
			fmt.Printf("  #%s %s: %d points\n", p.Number, p.Name, p.Points)
		}
	}
	for _, warn := range r.Warnings {
		fmt.Printf("Warning: %s\n", warn.Message)
	}
}

func (o *Output) printPlayerAudit(a PlayerAudit) {
	fmt.Printf("Player: %s\n", a.PlayerID)
	fmt.Printf("Balance: %d\n", a.Cached)
	fmt.Printf("Log total: %d\n", a.Ledger)
	if a.Consistent {
		fmt.Println("Consistent")
	} else {
		fmt.Println("DRIFT")
	}
}

func (o *Output) printBalanceDrifts(drifts []BalanceDrift) {
	if len(drifts) == 0 {
		fmt.Println("All balances match the point log")
		return
	}
	w := newTable()
	fmt.Fprintln(w, "NUMBER\tBALANCE\tLOG TOTAL\tID")
	for _, d := range drifts {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", d.Number, d.Cached, d.Ledger, d.PlayerID)
	}
	_ = w.Flush()
}

func (o *Output) printUser(u User) {
	role := "staff"
	if u.IsAdmin {
		role = "admin"
	}
	fmt.Printf("User: %s (%s)\n", u.Username, u.ID)
	fmt.Printf("Rank: %d [%s]\n", u.Rank, role)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Station viewers: %d\n", h.Viewers)
	if h.Session != "" {
		fmt.Printf("Session: %s\n", h.Session)
	}
}
