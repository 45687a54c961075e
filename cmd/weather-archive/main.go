// Command weather-archive rebuilds the daily temperature and heating degree day table.
package main

import (
	"os"

	"fxrates-etl/internal/bootstrap"

	"github.com/joho/godotenv"
)

func init() { _ = godotenv.Load() }

func main() {
	os.Exit(bootstrap.Main(bootstrap.JobWeather, bootstrap.InitWeatherApp))
}
