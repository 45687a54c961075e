// Command market-prices rebuilds the long-format daily close price table.
package main

import (
	"os"

	"fxrates-etl/internal/bootstrap"

	"github.com/joho/godotenv"
)

func init() { _ = godotenv.Load() }

func main() {
	os.Exit(bootstrap.Main(bootstrap.JobMarket, bootstrap.InitMarketApp))
}
