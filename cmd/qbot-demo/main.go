// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main provides qbot-demo - a small tool that seeds a demo SQLite
// database so qbot has something to talk to out of the box.
package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

const version = "0.3.0"

const defaultPath = "demo.db"

func main() {
	path := defaultPath
	force := false

	for _, arg := range os.Args[1:] {
		switch arg {
		case "--help", "-h":
			printHelp()
			return
		case "--version", "-v":
			fmt.Printf("qbot-demo v%s\n", version)
			return
		case "--force", "-f":
			force = true
		default:
			path = arg
		}
	}

	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintf(os.Stderr, "[Error] %s already exists (use --force to overwrite)\n", path)
		os.Exit(1)
	}
	_ = os.Remove(path)

	if err := seed(path); err != nil {
		fmt.Fprintf(os.Stderr, "[Error] %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("  [OK] Created demo database: %s\n", path)
	fmt.Println()
	fmt.Println("Try it:")
	fmt.Println()
	fmt.Printf("    qbot --db %s\n", path)
	fmt.Println()
	fmt.Println("Then ask something like \"which customer has spent the most?\"")
}

// printHelp shows usage information
func printHelp() {
	fmt.Println(`qbot-demo v` + version + `

Usage: qbot-demo [OPTIONS] [PATH]

Seeds a demo SQLite database with customers, products, and orders.
PATH defaults to ` + defaultPath + `.

Options:
  --force, -f    Overwrite an existing file
  --help, -h     Show this help
  --version, -v  Show version`)
}

// seed creates the schema and inserts sample rows.
func seed(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range customers {
		if _, err := tx.Exec(
			`INSERT INTO customers (name, email, city, signed_up) VALUES (?, ?, ?, ?)`,
			c.name, c.email, c.city, c.signedUp,
		); err != nil {
			return fmt.Errorf("insert customer: %w", err)
		}
	}
	for _, p := range products {
		if _, err := tx.Exec(
			`INSERT INTO products (name, category, price) VALUES (?, ?, ?)`,
			p.name, p.category, p.price,
		); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
	}
	for _, o := range orders {
		if _, err := tx.Exec(
			`INSERT INTO orders (customer_id, product_id, quantity, ordered_at) VALUES (?, ?, ?, ?)`,
			o.customerID, o.productID, o.quantity, o.orderedAt,
		); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
	}

	return tx.Commit()
}
