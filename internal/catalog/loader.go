package catalog

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mta-tools/wycena/internal/model"
)

// File names expected under the catalog data directory.
const (
	salonFile      = "salon_prices.csv"
	engineFile     = "engine_upgrades.csv"
	visualIDFile   = "visual_id_prices.csv"
	visualNameFile = "visual_name_prices.csv"
	mechFile       = "mech_prices.csv"
	bodykitFile    = "bodykits.csv"
)

// headerNames are first-column values that mark a header row to skip.
var headerNames = map[string]bool{
	"model":     true,
	"modele":    true,
	"id":        true,
	"key":       true,
	"basemodel": true,
}

// Load reads the six price tables from dir. A missing file yields an
// empty table for that category; only unreadable content is an error.
func Load(dir string) (*Catalog, error) {
	cat := New()

	loaders := []struct {
		file string
		fn   func(*Catalog, [][]string)
	}{
		{salonFile, loadSalon},
		{engineFile, loadEngineUpgrades},
		{visualIDFile, loadVisualID},
		{visualNameFile, loadVisualName},
		{mechFile, loadMech},
		{bodykitFile, loadBodykits},
	}

	for _, l := range loaders {
		path := filepath.Join(dir, l.file)
		rows, err := readDelimited(path)
		if err != nil {
			if os.IsNotExist(eris.Cause(err)) {
				zap.L().Warn("catalog: table file missing, continuing with empty table",
					zap.String("file", l.file))
				continue
			}
			return nil, eris.Wrapf(err, "catalog: load %s", l.file)
		}
		l.fn(cat, rows)
	}

	cat.BuildIndexes()

	zap.L().Info("catalog: loaded",
		zap.Int("salon_rows", len(cat.Salon)),
		zap.Int("engine_upgrade_rows", len(cat.EngineUpgrades)),
		zap.Int("visual_id_prices", len(cat.VisualByID)),
		zap.Int("visual_name_prices", len(cat.VisualByName)),
		zap.Int("mech_prices", len(cat.MechByKey)),
		zap.Int("bodykits", len(cat.Bodykits)),
	)
	return cat, nil
}

// readDelimited reads a `;`- or `,`-separated file, skipping blank lines,
// `#` comments, and recognized header rows. `;` wins when both appear so
// money values may keep their thousands commas.
func readDelimited(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open")
	}
	defer f.Close()

	var rows [][]string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		sep := ","
		if strings.Contains(line, ";") {
			sep = ";"
		}
		parts := strings.Split(line, sep)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) > 0 && headerNames[strings.ToLower(parts[0])] {
			continue
		}
		rows = append(rows, parts)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "scan")
	}
	return rows, nil
}

// Row layout: Model;Pojazd;Silnik;Cena
func loadSalon(cat *Catalog, rows [][]string) {
	for _, r := range rows {
		if len(r) < 4 {
			continue
		}
		price, err := ParseMoney(r[3])
		if err != nil {
			zap.L().Warn("catalog: skipping salon row", zap.Strings("row", r), zap.Error(err))
			continue
		}
		cat.Salon = append(cat.Salon, SalonRow{Model: r[0], Vehicle: r[1], Engine: r[2], Price: price})
	}
}

// Row layout: Modele;From;To;Cena — Modele is a comma-separated key list.
func loadEngineUpgrades(cat *Catalog, rows [][]string) {
	for _, r := range rows {
		if len(r) < 4 {
			continue
		}
		from, err1 := parseDecimal(r[1])
		to, err2 := parseDecimal(r[2])
		price, err3 := ParseMoney(r[3])
		if err1 != nil || err2 != nil || err3 != nil {
			zap.L().Warn("catalog: skipping engine upgrade row", zap.Strings("row", r))
			continue
		}
		cat.EngineUpgrades = append(cat.EngineUpgrades, EngineUpgradeRow{
			ModelKeys: r[0], From: from, To: to, Price: price,
		})
	}
}

// Row layout: Id;Cena
func loadVisualID(cat *Catalog, rows [][]string) {
	for _, r := range rows {
		if len(r) < 2 {
			continue
		}
		id, err := strconv.Atoi(r[0])
		if err != nil {
			continue
		}
		price, err := ParseMoney(r[1])
		if err != nil {
			zap.L().Warn("catalog: skipping visual id row", zap.Strings("row", r), zap.Error(err))
			continue
		}
		cat.VisualByID[id] = price
	}
}

// Row layout: Key;Cena
func loadVisualName(cat *Catalog, rows [][]string) {
	for _, r := range rows {
		if len(r) < 2 {
			continue
		}
		price, err := ParseMoney(r[1])
		if err != nil {
			zap.L().Warn("catalog: skipping visual name row", zap.Strings("row", r), zap.Error(err))
			continue
		}
		cat.VisualByName[model.NormalizeKey(r[0])] = price
	}
}

// Row layout: Key;Cena
func loadMech(cat *Catalog, rows [][]string) {
	for _, r := range rows {
		if len(r) < 2 {
			continue
		}
		price, err := ParseMoney(r[1])
		if err != nil {
			zap.L().Warn("catalog: skipping mech row", zap.Strings("row", r), zap.Error(err))
			continue
		}
		cat.MechByKey[model.FoldKey(r[0])] = price
	}
}

// Row layout: BaseModel;Name;Level;Cena
func loadBodykits(cat *Catalog, rows [][]string) {
	for _, r := range rows {
		if len(r) < 4 {
			continue
		}
		level, err := strconv.Atoi(r[2])
		if err != nil {
			continue
		}
		price, err := ParseMoney(r[3])
		if err != nil {
			zap.L().Warn("catalog: skipping bodykit row", zap.Strings("row", r), zap.Error(err))
			continue
		}
		cat.Bodykits = append(cat.Bodykits, BodykitRow{BaseModel: r[0], Name: r[1], Level: level, Price: price})
	}
}

// parseDecimal parses a displacement bound, accepting "2,5" for "2.5".
func parseDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "parse decimal %q", s)
	}
	return v, nil
}
