package actualsimport

type Config struct {
	CSVPath     string
	DatabaseURL string
	FarmID      string
	FiscalYear  int
	// Wipe clears the fiscal year before importing.
	Wipe bool
}
