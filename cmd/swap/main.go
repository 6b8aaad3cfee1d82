// Package main is an interactive CLI that drives one orchestrated swap
// attempt end to end: quote, unsigned PSBT, paste-the-signed-PSBT signing,
// and submission with the one-shot fee bump.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"runesswap/internal/domain"
	"runesswap/internal/fees"
	"runesswap/internal/orchestrator"
	"runesswap/internal/venue"
	"runesswap/internal/venue/satsterminal"
)

// pasteSigner prints the unsigned PSBT and reads the signed counterpart from
// stdin. An empty line aborts the attempt.
type pasteSigner struct {
	in *bufio.Reader
}

func (p *pasteSigner) Sign(_ context.Context, psbtBase64 string) (string, error) {
	fmt.Println()
	color.Cyan("Unsigned PSBT (sign it with your wallet):")
	fmt.Println(psbtBase64)
	fmt.Println()
	fmt.Print("Paste the signed PSBT (empty line to abort): ")

	line, err := p.in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read signed psbt: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", orchestrator.ErrSigningCancelled
	}
	return line, nil
}

func main() {
	_ = godotenv.Load()

	runeName := flag.String("rune", "", "Rune name to swap (spaced form)")
	btcAmount := flag.String("btc-amount", "", "BTC amount to swap")
	sell := flag.Bool("sell", false, "Sell the rune for BTC instead of buying")
	ordinalsAddress := flag.String("ordinals-address", os.Getenv("ORDINALS_ADDRESS"), "Ordinals address")
	ordinalsPubKey := flag.String("ordinals-pubkey", os.Getenv("ORDINALS_PUBKEY"), "Ordinals public key")
	paymentAddress := flag.String("payment-address", os.Getenv("PAYMENT_ADDRESS"), "Payment address")
	paymentPubKey := flag.String("payment-pubkey", os.Getenv("PAYMENT_PUBKEY"), "Payment public key")
	feeTier := flag.String("fee-tier", string(domain.FeeTierFastest), "Starting fee tier (hour, halfHour, fastest)")
	satsURL := flag.String("satsterminal-url", os.Getenv("SATSTERMINAL_URL"), "Liquidity venue base URL")
	satsAPIKey := flag.String("satsterminal-api-key", os.Getenv("SATSTERMINAL_API_KEY"), "Liquidity venue API key")
	mempoolURL := flag.String("mempool-url", envOr("MEMPOOL_URL", "https://mempool.space"), "Fee estimate source base URL")
	flag.Parse()

	if *runeName == "" || *btcAmount == "" || *satsURL == "" ||
		*ordinalsAddress == "" || *paymentAddress == "" {
		fmt.Fprintln(os.Stderr, "required: --rune, --btc-amount, --satsterminal-url, --ordinals-address, --payment-address")
		os.Exit(2)
	}

	ctx := context.Background()
	client := satsterminal.New(*satsURL, venue.WithAPIKey(*satsAPIKey))

	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	sp.Suffix = fmt.Sprintf(" fetching quote for %s...", *runeName)
	sp.Start()
	quote, err := client.FetchQuote(ctx, satsterminal.QuoteRequest{
		BTCAmount: *btcAmount,
		RuneName:  *runeName,
		Sell:      *sell,
		Address:   *paymentAddress,
	})
	sp.Stop()
	if err != nil {
		fail("fetch quote", err)
	}

	color.Green("Quote: %s %s -> %s %s (%d orders, valid %ds)",
		quote.Amount, quote.InputAsset, quote.ExpectedOutput, quote.OutputAsset,
		len(quote.SelectedOrders), domain.QuoteTTLMs/1000)

	orch := orchestrator.New(orchestrator.Options{
		Venue:  client,
		Fees:   fees.NewEstimator(*mempoolURL),
		Signer: &pasteSigner{in: bufio.NewReader(os.Stdin)},
		Logger: zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger(),
	})

	result, err := orch.Run(ctx, orchestrator.SwapRequest{
		Quote:           quote,
		RuneName:        *runeName,
		Sell:            *sell,
		OrdinalsAddress: *ordinalsAddress,
		OrdinalsPubKey:  *ordinalsPubKey,
		PaymentAddress:  *paymentAddress,
		PaymentPubKey:   *paymentPubKey,
		FeeTier:         domain.FeeTier(*feeTier),
	})

	fmt.Println()
	color.Cyan("Attempt %s timeline:", result.AttemptID)
	for _, ev := range result.Events {
		fmt.Printf("  %2d  %s  %-19s %s\n", ev.Seq, ev.At.Format("15:04:05"), ev.Type, ev.Note)
	}
	fmt.Println()

	switch {
	case err == nil:
		color.Green("Swap confirmed: %s (fee rate %d sat/vB)", result.TxID, result.FeeRate)
	case errors.Is(err, orchestrator.ErrSigningCancelled):
		color.Yellow("Aborted, nothing was submitted.")
	case errors.Is(err, orchestrator.ErrQuoteExpired):
		fail("swap", errors.New("quote expired, fetch a new one and retry"))
	default:
		fail("swap", err)
	}
}

func fail(what string, err error) {
	color.Red("%s failed: %v", what, err)
	os.Exit(1)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
