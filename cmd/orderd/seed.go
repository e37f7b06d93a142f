package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/livekart/orderflow/internal/core/domain"
	"github.com/livekart/orderflow/internal/store/sqlite"
)

// seedProduct is the catalog file shape. Prices are decoded as json.Number
// so "19.99" survives exactly as written.
type seedProduct struct {
	ProductID string      `json:"product_id"`
	Title     string      `json:"title"`
	Price     json.Number `json:"price"`
	Stock     *int        `json:"stock"`
	VendorID  string      `json:"vendor_id"`
}

func init() {
	var file string

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Import a JSON product catalog into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(cmd, file)
		},
	}
	seedCmd.Flags().StringVar(&file, "file", "catalog.json", "catalog file to import")
	rootCmd.AddCommand(seedCmd)
}

func seed(cmd *cobra.Command, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	var seeds []seedProduct
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&seeds); err != nil {
		return fmt.Errorf("parse catalog %q: %w", file, err)
	}

	products := make([]domain.Product, 0, len(seeds))
	for _, s := range seeds {
		if s.ProductID == "" {
			return fmt.Errorf("catalog %q: product with empty product_id", file)
		}
		price, err := decimal.NewFromString(s.Price.String())
		if err != nil {
			return fmt.Errorf("catalog %q: product %q price: %w", file, s.ProductID, err)
		}
		if price.IsNegative() {
			return fmt.Errorf("catalog %q: product %q has negative price", file, s.ProductID)
		}
		products = append(products, domain.Product{
			ID:       s.ProductID,
			Title:    s.Title,
			Price:    price,
			Stock:    s.Stock,
			VendorID: s.VendorID,
		})
	}

	store, err := sqlite.Open(viper.GetString("db-path"))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Products().BulkImport(cmd.Context(), products); err != nil {
		return err
	}
	fmt.Printf("imported %d products\n", len(products))
	return nil
}
