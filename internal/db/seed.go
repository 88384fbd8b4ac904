package db

import (
	"fmt"

	"github.com/syariahos/syariahos-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// defaultTools is the catalog installed on an empty tools table.
var defaultTools = []models.Tool{
	{
		Name:        "Kalkulator Zakat Maal",
		Category:    "zakat",
		Description: "Menghitung kewajiban zakat atas harta yang telah mencapai nisab dan haul.",
		Inputs:      datatypes.JSONSlice[string]{"Total harta", "Hutang jatuh tempo", "Harga emas per gram"},
		Outputs:     datatypes.JSONSlice[string]{"Status nisab", "Jumlah zakat"},
		Benefits:    datatypes.JSONSlice[string]{"Menyucikan harta", "Memastikan ketepatan perhitungan"},
		ShariaBasis: "QS. At-Taubah: 103",
		Sources: datatypes.JSONSlice[models.ToolSource]{
			{Title: "Al-Quran", Reference: "At-Taubah 9:103"},
		},
	},
	{
		Name:        "Simulasi Murabahah",
		Category:    "pembiayaan",
		Description: "Mensimulasikan harga jual dan angsuran akad murabahah dengan margin yang disepakati.",
		Inputs:      datatypes.JSONSlice[string]{"Harga pokok", "Margin", "Tenor"},
		Outputs:     datatypes.JSONSlice[string]{"Harga jual", "Angsuran bulanan"},
		Benefits:    datatypes.JSONSlice[string]{"Transparansi margin", "Bebas riba"},
		ShariaBasis: "QS. Al-Baqarah: 275",
		Sources: datatypes.JSONSlice[models.ToolSource]{
			{Title: "Fatwa DSN-MUI", Reference: "No. 04/DSN-MUI/IV/2000"},
		},
	},
	{
		Name:        "Perencana Dana Haji",
		Category:    "perencanaan",
		Description: "Menyusun target tabungan bulanan untuk biaya perjalanan haji.",
		Inputs:      datatypes.JSONSlice[string]{"Estimasi biaya", "Tahun keberangkatan", "Tabungan saat ini"},
		Outputs:     datatypes.JSONSlice[string]{"Setoran bulanan"},
		Benefits:    datatypes.JSONSlice[string]{"Perencanaan terukur"},
		ShariaBasis: "QS. Ali Imran: 97",
	},
}

// ensureDefaultTools installs the default catalog when the tools table is empty.
func ensureDefaultTools(conn *gorm.DB) error {
	var count int64
	if errCount := conn.Model(&models.Tool{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("db: count tools: %w", errCount)
	}
	if count > 0 {
		return nil
	}
	tools := make([]models.Tool, len(defaultTools))
	copy(tools, defaultTools)
	for i := range tools {
		if tools[i].RelatedDirectories == nil {
			tools[i].RelatedDirectories = datatypes.JSONSlice[string]{}
		}
		if tools[i].Sources == nil {
			tools[i].Sources = datatypes.JSONSlice[models.ToolSource]{}
		}
	}
	if errCreate := conn.Create(&tools).Error; errCreate != nil {
		return fmt.Errorf("db: seed tools: %w", errCreate)
	}
	return nil
}
