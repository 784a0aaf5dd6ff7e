package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

type LogStats struct {
	Lines               int
	TotalErrors         int
	TotalWarnings       int
	LoginSuccess        int
	LoginFailures       int
	Registrations       int
	OrdersPlaced        int
	OrdersCancelled     int
	PaymentsRecorded    int
	DuplicateDeliveries int
	IntentFailures      int
	InvalidSignatures   int
	UnmatchedPayments   int
	AmountMismatches    int
	ForbiddenAttempts   int
	UserActivities      map[string]int
	ErrorPatterns       map[string]int
}

var (
	levelRe    = regexp.MustCompile(`level=(\w+)`)
	msgRe      = regexp.MustCompile(`msg=("(?:[^"\\]|\\.)*"|\S+)`)
	usernameRe = regexp.MustCompile(`(?:username|logged in|registered): ([a-zA-Z0-9_]+)`)
	digitsRe   = regexp.MustCompile(`\d+`)
)

func main() {
	logDir := flag.String("dir", "./logs", "directory holding app-YYYY-MM-DD.log files")
	date := flag.String("date", time.Now().Format("2006-01-02"), "day to analyze")
	flag.Parse()

	stats := &LogStats{
		UserActivities: make(map[string]int),
		ErrorPatterns:  make(map[string]int),
	}

	logFile := filepath.Join(*logDir, fmt.Sprintf("app-%s.log", *date))
	if err := analyzeLog(logFile, stats); err != nil {
		fmt.Printf("Error reading log file %s: %v\n", logFile, err)
		os.Exit(1)
	}

	printReport(*date, stats)
}

func analyzeLog(logFile string, stats *LogStats) error {
	file, err := os.Open(logFile)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		level, msg := parseLine(scanner.Text())
		if msg == "" {
			continue
		}
		stats.Lines++
		classify(level, msg, stats)
	}
	return scanner.Err()
}

// parseLine extracts level and message from a slog text record
func parseLine(line string) (string, string) {
	var level, msg string
	if m := levelRe.FindStringSubmatch(line); m != nil {
		level = m[1]
	}
	if m := msgRe.FindStringSubmatch(line); m != nil {
		msg = m[1]
		if unquoted, err := strconv.Unquote(msg); err == nil {
			msg = unquoted
		}
	}
	return level, msg
}

func classify(level, msg string, stats *LogStats) {
	switch level {
	case "ERROR":
		stats.TotalErrors++
		stats.ErrorPatterns[errorPattern(msg)]++
	case "WARN":
		stats.TotalWarnings++
	}

	switch {
	case strings.HasPrefix(msg, "User logged in"):
		stats.LoginSuccess++
		extractUserActivity(msg, stats)
	case strings.HasPrefix(msg, "Failed login attempt"):
		stats.LoginFailures++
		extractUserActivity(msg, stats)
	case strings.HasPrefix(msg, "New user registered"):
		stats.Registrations++
		extractUserActivity(msg, stats)
	case strings.HasPrefix(msg, "New order placed"):
		stats.OrdersPlaced++
	case strings.HasPrefix(msg, "Payment cancelled for order"):
		stats.OrdersCancelled++
	case strings.HasPrefix(msg, "Payment recorded for order"):
		stats.PaymentsRecorded++
	case strings.Contains(msg, "already recorded, ignoring redelivery"):
		stats.DuplicateDeliveries++
	case strings.HasPrefix(msg, "Payment intent creation failed"):
		stats.IntentFailures++
	case strings.HasPrefix(msg, "Invalid signature on"):
		stats.InvalidSignatures++
	case strings.Contains(msg, "queued for reconciliation"):
		stats.UnmatchedPayments++
	case strings.Contains(msg, "minor units, expected"):
		stats.AmountMismatches++
	case strings.HasPrefix(msg, "Unauthorized access attempt"):
		stats.ForbiddenAttempts++
	}
}

func extractUserActivity(msg string, stats *LogStats) {
	if m := usernameRe.FindStringSubmatch(msg); m != nil {
		stats.UserActivities[m[1]]++
	}
}

// errorPattern groups messages that differ only in ids and in the wrapped error
func errorPattern(msg string) string {
	if i := strings.Index(msg, ": "); i > 0 {
		msg = msg[:i]
	}
	return digitsRe.ReplaceAllString(msg, "N")
}

func printReport(date string, stats *LogStats) {
	fmt.Println("\n=== Log Analysis Report ===")
	fmt.Println("Day:", date)
	fmt.Println("Generated:", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Printf("Records: %d\n", stats.Lines)

	fmt.Println("\n1. Authentication Statistics:")
	fmt.Printf("   Registrations: %d\n", stats.Registrations)
	fmt.Printf("   Successful Logins: %d\n", stats.LoginSuccess)
	fmt.Printf("   Failed Logins: %d\n", stats.LoginFailures)

	fmt.Println("\n2. Orders and Payments:")
	fmt.Printf("   Orders Placed: %d\n", stats.OrdersPlaced)
	fmt.Printf("   Orders Cancelled: %d\n", stats.OrdersCancelled)
	fmt.Printf("   Payments Recorded: %d\n", stats.PaymentsRecorded)
	fmt.Printf("   Duplicate Webhook Deliveries: %d\n", stats.DuplicateDeliveries)
	fmt.Printf("   Payment Intent Failures: %d\n", stats.IntentFailures)
	fmt.Printf("   Unmatched Payments: %d\n", stats.UnmatchedPayments)
	fmt.Printf("   Amount Mismatches: %d\n", stats.AmountMismatches)

	fmt.Println("\n3. Security Incidents:")
	fmt.Printf("   Invalid Webhook Signatures: %d\n", stats.InvalidSignatures)
	fmt.Printf("   Access To Other Users' Orders: %d\n", stats.ForbiddenAttempts)

	fmt.Println("\n4. Error Statistics:")
	fmt.Printf("   Total Errors: %d\n", stats.TotalErrors)
	fmt.Printf("   Total Warnings: %d\n", stats.TotalWarnings)

	fmt.Println("\n5. Most Active Users:")
	printTop(stats.UserActivities, 5, "activities")

	fmt.Println("\n6. Most Common Errors:")
	printTop(stats.ErrorPatterns, 5, "occurrences")
}

func printTop(counts map[string]int, limit int, unit string) {
	type entry struct {
		key   string
		count int
	}

	var entries []entry
	for key, count := range counts {
		entries = append(entries, entry{key, count})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})

	for i, e := range entries {
		if i >= limit {
			break
		}
		fmt.Printf("   %s: %d %s\n", e.key, e.count, unit)
	}
}
