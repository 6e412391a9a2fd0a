// seed-sample-visits creates the users, checkins and visit_responses tables
// and fills them with agents from the team roster and a few days of visits.
//
// Usage:
//
//	DB_HOST=... DB_NAME=... go run ./cmd/seed-sample-visits [-days 7] [-seed 1]
//
// Agents are named after their phone number, which is how rosters refer to
// them.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/salesync/reports_backend/config"
	"github.com/salesync/reports_backend/models"
)

const samplePassword = "agent123"

var sampleCustomers = []struct {
	GoldrushID string
	First      string
	Last       string
}{
	{"GR-1001", "Thandi", "Mokoena"},
	{"GR-1002", "Sipho", "Dlamini"},
	{"GR-1003", "Lerato", "Nkosi"},
	{"GR-1004", "Johan", "van Wyk"},
	{"GR-1005", "Ayesha", "Patel"},
}

func sampleResponses(r *rand.Rand) interface{} {
	c := sampleCustomers[r.Intn(len(sampleCustomers))]
	if r.Intn(2) == 0 {
		return map[string]interface{}{
			"answers": []map[string]interface{}{
				{"question": "Goldrush ID", "answer": c.GoldrushID},
				{"question": "Customer Name", "answer": c.First},
				{"question": "Customer Surname", "answer": c.Last},
			},
		}
	}
	return map[string]interface{}{
		"goldrush_id": c.GoldrushID,
		"customer": map[string]interface{}{
			"first name": c.First,
			"last name":  c.Last,
		},
	}
}

func main() {
	days := flag.Int("days", 7, "number of days of visits ending today")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	roster, err := config.TeamRosterFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := config.ConnectDatabase(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect database: %v\n", err)
		os.Exit(1)
	}
	models.MigrateTable()

	ctx := context.Background()
	r := rand.New(rand.NewSource(*seed))
	today := time.Now().UTC().Truncate(24 * time.Hour)
	var users, visits int
	for _, lead := range roster.Leads {
		for _, member := range lead.Members {
			user, err := models.CreateUser(ctx, &models.NewUser{
				Phone:    member,
				Password: samplePassword,
				Role:     models.UserRoleAgent,
				Name:     member,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to create user %s: %v\n", member, err)
				os.Exit(1)
			}
			users++
			for d := 0; d < *days; d++ {
				day := today.AddDate(0, 0, -d)
				for i, n := 0, r.Intn(4); i < n; i++ {
					_, err := models.CreateCheckIn(ctx, &models.NewCheckIn{
						AgentId:   user.ID,
						Timestamp: day.Add(time.Duration(8+r.Intn(9)) * time.Hour),
						Latitude:  -26.2041 + r.Float64()/10,
						Longitude: 28.0473 + r.Float64()/10,
						Responses: sampleResponses(r),
					})
					if err != nil {
						fmt.Fprintf(os.Stderr, "failed to create check-in for %s: %v\n", member, err)
						os.Exit(1)
					}
					visits++
				}
			}
		}
	}
	fmt.Printf("Seeded %d agents and %d visits over %d days\n", users, visits, *days)
	fmt.Printf("Agent password: %s\n", samplePassword)
}
