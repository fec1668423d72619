// roletraffic sends randomized candidate profiles to a running inference
// service to populate the monitoring dashboards during demos and smoke
// tests.
package main

import (
	"flag"
	"math/rand"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"roleserve/internal/features"
	"roleserve/internal/serve"
)

var sampleProfiles = []features.CandidateProfile{
	{Skills: "Python, Machine Learning, Docker", Qualification: "M.Sc", ExperienceLevel: "Senior"},
	{Skills: "Java, Spring Boot, SQL", Qualification: "B.Tech", ExperienceLevel: "Mid"},
	{Skills: "React, CSS, JavaScript", Qualification: "B.Sc", ExperienceLevel: "Junior"},
	// "Entry" is outside the trained vocabulary on purpose: it exercises
	// the soft validation warning path on the server.
	{Skills: "Excel, Word", Qualification: "High School", ExperienceLevel: "Entry"},
	{Skills: "Kubernetes, Go, Terraform, AWS", Qualification: "PhD", ExperienceLevel: "Executive"},
	{Skills: "Python, Pandas, Scikit-learn", Qualification: "M.Sc", ExperienceLevel: "Mid"},
}

func main() {
	url := flag.String("url", "http://localhost:8000/predict", "prediction endpoint")
	count := flag.Int("n", 20, "number of requests to send")
	delay := flag.Duration("delay", time.Second, "delay between requests")
	flag.Parse()

	client := resty.New()
	client.SetTimeout(5 * time.Second)

	log.Info().Str("url", *url).Int("count", *count).Msg("sending traffic")

	sent := 0
	for i := 0; i < *count; i++ {
		profile := sampleProfiles[rand.Intn(len(sampleProfiles))]

		result := &serve.Result{}
		resp, err := client.R().
			SetBody(profile).
			SetResult(result).
			Post(*url)
		if err != nil {
			log.Error().Err(err).Msg("request failed, is the server running?")
			return
		}

		if resp.IsSuccess() {
			log.Info().
				Int("seq", i+1).
				Str("role", result.PredictedRole).
				Float64("confidence", result.Confidence).
				Str("status", result.Status).
				Msg("prediction")
			sent++
		} else {
			log.Warn().Int("status_code", resp.StatusCode()).
				Str("body", resp.String()).Msg("request rejected")
		}

		time.Sleep(*delay)
	}

	log.Info().Int("sent", sent).Msg("completed")
}
