//go:build ignore

// Package main generates a synthetic record set for trying out the search
// command without configuring any connector.
//
// Usage:
//
//	go run scripts/generate-demo-records.go -count 200 -output testdata/demo-records.json
//	patchbay search "payment timeout" --file testdata/demo-records.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	count   = flag.Int("count", 200, "Number of records to generate")
	output  = flag.String("output", "testdata/demo-records.json", "Output file ('-' for stdout)")
	seedVal = flag.Int64("seed", 42, "Random seed for reproducibility")
)

// Word pools for generating realistic record text
var (
	components = []string{
		"checkout", "billing", "webhook", "scheduler", "importer",
		"notifier", "auth", "search", "sync", "exporter",
		"dashboard", "api gateway", "worker pool", "rate limiter", "cache",
	}
	symptoms = []string{
		"timeout", "crash", "memory leak", "slow response", "duplicate events",
		"missing records", "stale data", "connection reset", "retry storm", "flaky test",
	}
	actions = []string{
		"investigate", "fix", "roll back", "monitor", "document",
		"upgrade", "migrate", "refactor", "deprecate", "re-enable",
	}
	teams = []string{
		"platform", "payments", "growth", "infra", "support",
	}
	people = []string{
		"Dana Reyes", "Kofi Mensah", "Priya Nair", "Tomás Silva", "Mei Lin",
		"Aisha Bello", "Jonas Weber", "Sofia Rossi", "Hana Sato", "Lucas Moreau",
	}
	companies = []string{
		"Acme Manufacturing", "Globex Retail", "Initech Software", "Umbrella Health",
		"Stark Logistics", "Wayne Analytics", "Hooli Media", "Pied Piper Storage",
	}
)

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seedVal))

	records := make([]map[string]any, 0, *count)
	for i := 0; i < *count; i++ {
		// Mirror the shapes connectors return: issues, incidents,
		// contacts, and pages in a 4:3:2:1 mix.
		switch i % 10 {
		case 0, 1, 2, 3:
			records = append(records, issueRecord(rng, i))
		case 4, 5, 6:
			records = append(records, incidentRecord(rng, i))
		case 7, 8:
			records = append(records, contactRecord(rng, i))
		default:
			records = append(records, pageRecord(rng, i))
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding records: %v\n", err)
		os.Exit(1)
	}
	data = append(data, '\n')

	if *output == "-" {
		_, _ = os.Stdout.Write(data)
		return
	}

	if dir := filepath.Dir(*output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			os.Exit(1)
		}
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d records in %s\n", len(records), *output)
	fmt.Printf("Try: patchbay search %q --file %s\n", pick(rng, symptoms), *output)
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}

func daysAgo(rng *rand.Rand, max int) string {
	d := time.Duration(rng.Intn(max*24)) * time.Hour
	return time.Now().Add(-d).UTC().Format(time.RFC3339)
}

func issueRecord(rng *rand.Rand, i int) map[string]any {
	component := pick(rng, components)
	symptom := pick(rng, symptoms)
	state := "open"
	if rng.Intn(3) == 0 {
		state = "closed"
	}
	return map[string]any{
		"id":         fmt.Sprintf("github-issue-%d", 1000+i),
		"connector":  "github",
		"type":       "issue",
		"title":      fmt.Sprintf("%s %s in %s", capitalizeFirst(pick(rng, actions)), symptom, component),
		"body":       fmt.Sprintf("The %s started showing a %s after the last deploy. The %s team can reproduce it on staging.", component, symptom, pick(rng, teams)),
		"state":      state,
		"labels":     fmt.Sprintf("%s, %s", component, pick(rng, teams)),
		"comments":   rng.Intn(40),
		"created_at": daysAgo(rng, 90),
	}
}

func incidentRecord(rng *rand.Rand, i int) map[string]any {
	component := pick(rng, components)
	symptom := pick(rng, symptoms)
	urgency := "low"
	if rng.Intn(2) == 0 {
		urgency = "high"
	}
	status := []string{"triggered", "acknowledged", "resolved"}[rng.Intn(3)]
	return map[string]any{
		"id":         fmt.Sprintf("pagerduty-incident-%d", 5000+i),
		"connector":  "pagerduty",
		"type":       "incident",
		"title":      fmt.Sprintf("%s alert: %s", capitalizeFirst(component), symptom),
		"body":       fmt.Sprintf("Paging the %s on-call. Customers report a %s when using %s.", pick(rng, teams), symptom, component),
		"urgency":    urgency,
		"status":     status,
		"service":    component,
		"created_at": daysAgo(rng, 30),
	}
}

func contactRecord(rng *rand.Rand, i int) map[string]any {
	name := pick(rng, people)
	company := pick(rng, companies)
	stage := "lead"
	if rng.Intn(3) == 0 {
		stage = "customer"
	}
	return map[string]any{
		"id":              fmt.Sprintf("hubspot-contact-%d", 9000+i),
		"connector":       "hubspot",
		"type":            "contact",
		"name":            name,
		"email":           fmt.Sprintf("contact%d@example.com", i),
		"company":         company,
		"lifecycle_stage": stage,
		"notes":           fmt.Sprintf("%s at %s asked about the %s integration.", name, company, pick(rng, components)),
		"created_at":      daysAgo(rng, 365),
	}
}

func pageRecord(rng *rand.Rand, i int) map[string]any {
	component := pick(rng, components)
	return map[string]any{
		"id":         fmt.Sprintf("notion-page-%d", 7000+i),
		"connector":  "notion",
		"type":       "page",
		"title":      fmt.Sprintf("Runbook: %s", component),
		"body":       fmt.Sprintf("Steps to %s the %s. Escalate to the %s team if the %s persists.", pick(rng, actions), component, pick(rng, teams), pick(rng, symptoms)),
		"created_at": daysAgo(rng, 365),
	}
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
