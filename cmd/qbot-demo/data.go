// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

var schema = []string{
	`CREATE TABLE customers (
		id        INTEGER PRIMARY KEY,
		name      TEXT NOT NULL,
		email     TEXT NOT NULL UNIQUE,
		city      TEXT NOT NULL,
		signed_up TEXT NOT NULL
	)`,
	`CREATE TABLE products (
		id       INTEGER PRIMARY KEY,
		name     TEXT NOT NULL,
		category TEXT NOT NULL,
		price    REAL NOT NULL
	)`,
	`CREATE TABLE orders (
		id          INTEGER PRIMARY KEY,
		customer_id INTEGER NOT NULL REFERENCES customers(id),
		product_id  INTEGER NOT NULL REFERENCES products(id),
		quantity    INTEGER NOT NULL DEFAULT 1,
		ordered_at  TEXT NOT NULL
	)`,
	`CREATE INDEX idx_orders_customer ON orders(customer_id)`,
	`CREATE INDEX idx_orders_product ON orders(product_id)`,
}

type customerRow struct {
	name, email, city, signedUp string
}

type productRow struct {
	name, category string
	price          float64
}

type orderRow struct {
	customerID, productID, quantity int
	orderedAt                       string
}

var customers = []customerRow{
	{"Ada Nygaard", "ada@example.com", "Oslo", "2024-01-12"},
	{"Ben Okafor", "ben@example.com", "Lagos", "2024-02-03"},
	{"Carla Reyes", "carla@example.com", "Madrid", "2024-02-19"},
	{"Dmitri Volkov", "dmitri@example.com", "Riga", "2024-03-07"},
	{"Emi Tanaka", "emi@example.com", "Osaka", "2024-03-28"},
	{"Farah Haddad", "farah@example.com", "Amman", "2024-04-15"},
	{"Gustav Lindqvist", "gustav@example.com", "Malmo", "2024-05-02"},
	{"Hana Kovac", "hana@example.com", "Brno", "2024-05-21"},
}

var products = []productRow{
	{"Mechanical Keyboard", "peripherals", 129.00},
	{"USB-C Dock", "peripherals", 89.50},
	{"27\" Monitor", "displays", 249.99},
	{"Laptop Stand", "accessories", 34.00},
	{"Webcam", "peripherals", 59.95},
	{"Desk Mat", "accessories", 19.00},
	{"Noise-Cancelling Headset", "audio", 179.00},
}

var orders = []orderRow{
	{1, 1, 1, "2024-06-01"},
	{1, 3, 2, "2024-06-14"},
	{2, 2, 1, "2024-06-03"},
	{2, 6, 3, "2024-06-03"},
	{3, 7, 1, "2024-06-09"},
	{4, 1, 1, "2024-06-11"},
	{4, 4, 2, "2024-06-11"},
	{4, 5, 1, "2024-07-02"},
	{5, 3, 1, "2024-07-04"},
	{6, 7, 2, "2024-07-10"},
	{6, 2, 1, "2024-07-22"},
	{7, 6, 1, "2024-07-25"},
	{8, 3, 1, "2024-08-01"},
	{8, 1, 1, "2024-08-01"},
	{8, 4, 1, "2024-08-15"},
}
