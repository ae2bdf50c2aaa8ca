// Package apiconnect wires the roulette services to connect handlers and
// clients using the api JSON codec.
package apiconnect
