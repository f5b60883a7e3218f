package store

// WriteUniverse persists the ticker universe as a single-column table.
func WriteUniverse(path string, tickers []string) error {
	t := New("ticker")
	for _, tk := range tickers {
		t.Append(tk)
	}
	return t.Write(path)
}

// ReadUniverse loads a universe artifact. The ticker column is resolved
// by alias; when none matches, the first column is used. Universe files
// from older tooling carry Ticker/Code/Symbol headers.
func ReadUniverse(path string) ([]string, error) {
	t, err := Read(path)
	if err != nil {
		return nil, err
	}
	col := t.Col("ticker", "Ticker", "Code", "code", "Symbol", "symbol")
	if col < 0 {
		col = 0
	}
	tickers := make([]string, 0, t.Len())
	for i := range t.Rows {
		if v := t.Cell(i, col); v != "" {
			tickers = append(tickers, v)
		}
	}
	return tickers, nil
}
