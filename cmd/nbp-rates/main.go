// Command nbp-rates extends the NBP mid-rate table up to yesterday.
// Exit status: 0 done or nothing to do, 2 partial, 1 failed.
package main

import (
	"os"

	"fxrates-etl/internal/bootstrap"

	"github.com/joho/godotenv"
)

func init() { _ = godotenv.Load() }

func main() {
	os.Exit(bootstrap.Main(bootstrap.JobRates, bootstrap.InitRateSyncApp))
}
