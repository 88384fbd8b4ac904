package settings

// Defaults applied to new accounts and to accounts reset from the profile page.
const (
	// DefaultSiteName is the product name used in reports and TOTP issuers.
	DefaultSiteName = "SyariahOS"
	// DefaultTheme is the UI theme of a new account.
	DefaultTheme = "light"
	// DefaultZakatRate is the zakat rate in percent.
	DefaultZakatRate = 2.5
	// DefaultContractType is the preferred contract type.
	DefaultContractType = "murabahah"
	// DefaultCalculationMethod is the preferred calendar for calculations.
	DefaultCalculationMethod = "hijri"
)

// Allowed preference values.
var (
	Themes             = []string{"light", "dark", "system"}
	ContractTypes      = []string{"murabahah", "mudharabah", "musyarakah", "ijarah", "wadiah", "qardh"}
	CalculationMethods = []string{"hijri", "gregorian"}
)

// DefaultCategories are seeded for every new or reset account.
var DefaultCategories = []string{"Ibadah", "Keuangan", "Kesehatan", "Belajar", "Sosial"}

// StarterTask describes a task seeded for new or reset accounts.
type StarterTask struct {
	Text        string
	Category    string
	ResetCycle  string
	HasLimit    bool
	TargetValue int
	Unit        string
}

// StarterTasks are seeded for every new or reset account.
var StarterTasks = []StarterTask{
	{Text: "Sholat lima waktu tepat waktu", Category: "Ibadah", ResetCycle: "daily"},
	{Text: "Tilawah Al-Quran", Category: "Ibadah", ResetCycle: "daily", HasLimit: true, TargetValue: 5, Unit: "halaman"},
	{Text: "Sedekah mingguan", Category: "Keuangan", ResetCycle: "weekly"},
	{Text: "Tabungan dana darurat", Category: "Keuangan", ResetCycle: "monthly", HasLimit: true, TargetValue: 1000000, Unit: "Rp"},
	{Text: "Hitung dan tunaikan zakat", Category: "Keuangan", ResetCycle: "yearly"},
}

// Contains reports whether value is one of allowed.
func Contains(allowed []string, value string) bool {
	for _, candidate := range allowed {
		if candidate == value {
			return true
		}
	}
	return false
}
