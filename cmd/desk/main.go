// Binary desk is an interactive terminal frontend over the trading core:
// pick an asset, place paper orders, watch the portfolio mark to market.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tradesim-go/internal/config"
	"tradesim-go/internal/engine"
	"tradesim-go/internal/market"
	"tradesim-go/internal/order"
	"tradesim-go/internal/portfolio"
	"tradesim-go/internal/series"
	"tradesim-go/internal/util"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		cfg = config.Default()
	}
	log := util.NewLogger("warn", cfg.App.Env)

	seed := cfg.Market.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen := series.NewGenerator(seed)
	stream := series.NewStream(gen, cfg.Market.TickInterval(), cfg.Market.BarInterval(), cfg.Market.HistoryBars)
	ledger := portfolio.NewLedger(cfg.Paper.StartingCash)

	desk, err := engine.New(log, cfg.Assets, ledger, stream)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build desk: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = desk.Run(ctx) }()

	reader := bufio.NewReader(os.Stdin)
	for {
		selected := desk.Selected()
		fmt.Printf("\n=== Trading Desk — %s (%s) @ $%.2f ===\n", selected.Name, selected.Symbol, selected.Price)
		fmt.Println("1) List assets")
		fmt.Println("2) Select asset")
		fmt.Println("3) Buy")
		fmt.Println("4) Sell")
		fmt.Println("5) Show portfolio")
		fmt.Println("6) Show recent bars")
		fmt.Println("7) Show fills")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, _ := reader.ReadString('\n')
		switch strings.TrimSpace(input) {
		case "1":
			printAssets(desk)
		case "2":
			selectAsset(reader, desk)
		case "3":
			placeOrder(reader, desk, order.Buy)
		case "4":
			placeOrder(reader, desk, order.Sell)
		case "5":
			printPortfolio(desk)
		case "6":
			printBars(desk)
		case "7":
			printFills(desk)
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printAssets(desk *engine.Desk) {
	fmt.Println("\n--- Assets ---")
	for _, a := range desk.Assets() {
		arrow := "+"
		if a.Change < 0 {
			arrow = ""
		}
		fmt.Printf("%-6s %-16s $%12.2f  %s%.2f (%s%.2f%%)  vol %.0f [%s]\n",
			a.Symbol, a.Name, a.Price, arrow, a.Change, arrow, a.ChangePercent, a.Volume, a.Kind)
	}
}

func selectAsset(reader *bufio.Reader, desk *engine.Desk) {
	fmt.Print("Symbol: ")
	line, _ := reader.ReadString('\n')
	symbol := strings.ToUpper(strings.TrimSpace(line))
	if symbol == "" {
		return
	}
	if err := desk.SelectAsset(symbol); err != nil {
		fmt.Fprintf(os.Stderr, "select failed: %v\n", err)
		return
	}
	fmt.Printf("now charting %s\n", symbol)
}

func placeOrder(reader *bufio.Reader, desk *engine.Desk, side order.Side) {
	symbol := desk.Selected().Symbol
	qty := promptFloat(reader, fmt.Sprintf("%s quantity for %s", side, symbol), 1)
	fill, err := desk.PlaceOrder(symbol, side, qty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "order rejected: %v\n", err)
		return
	}
	fmt.Printf("filled %s %.4f %s @ $%.2f\n", fill.Side, fill.Qty, fill.Symbol, fill.Price)
}

func printPortfolio(desk *engine.Desk) {
	v := desk.Valuation()
	fmt.Println("\n--- Portfolio ---")
	fmt.Printf("Available cash: $%.2f\n", v.Cash)
	fmt.Printf("Total value:    $%.2f\n", v.TotalValue)
	for sym, pos := range v.Positions {
		unit := "shares"
		if pos.Kind == market.KindCrypto {
			unit = "coins"
		}
		mark := "?"
		if pos.Quoted {
			mark = fmt.Sprintf("$%.2f | P&L %+.2f", pos.Value, pos.UnrealizedPnL)
		}
		fmt.Printf("%-6s %.4f %s @ $%.2f  %s\n", sym, pos.Amount, unit, pos.AveragePrice, mark)
	}
}

func printBars(desk *engine.Desk) {
	bars := desk.Bars()
	start := len(bars) - 10
	if start < 0 {
		start = 0
	}
	fmt.Printf("\n--- Last %d bars (%s) ---\n", len(bars)-start, desk.Selected().Symbol)
	for _, b := range bars[start:] {
		ts := time.UnixMilli(b.Time).Format("15:04:05")
		fmt.Printf("%s  o %.2f  h %.2f  l %.2f  c %.2f\n", ts, b.Open, b.High, b.Low, b.Close)
	}
}

func printFills(desk *engine.Desk) {
	fills := desk.Blotter().Snapshot()
	if len(fills) == 0 {
		fmt.Println("no fills yet")
		return
	}
	fmt.Println("\n--- Fills ---")
	for _, f := range fills {
		fmt.Printf("%s  %-4s %.4f %s @ $%.2f\n", f.Ts.Format("15:04:05"), f.Side, f.Qty, f.Symbol, f.Price)
	}
}

func promptFloat(reader *bufio.Reader, label string, current float64) float64 {
	fmt.Printf("%s [%.2f]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		fmt.Printf("invalid number, keeping %.2f\n", current)
		return current
	}
	return val
}
