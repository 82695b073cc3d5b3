// Package config loads typed configuration structs from environment
// variables, reading a .env file first when one exists.
package config
