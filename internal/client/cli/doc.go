// Package cli implements the interactive shopsync client: a small REPL over
// the session manager and the cart sync engine.
//
// Commands
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account (customer, seller or courier)
//	  - login          — authenticate
//	  - add/remove/qty — edit the anonymous cart (kept locally)
//	  - cart           — show the cart
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - whoami         — show the current profile and role
//	  - add            — add a product to the cart (interactive)
//	  - remove <id>    — remove a product line
//	  - qty <id> <n>   — set the quantity of a product line
//	  - cart           — show the cart
//	  - clear          — empty the cart
//	  - sync           — re-pull the server cart
//	  - logout         — log out (the local cart survives)
//	  - exit | quit    — leave the program
//
// The prompt shows the signed-in email and role. Command handlers log their
// own errors; the REPL loop ignores returned errors and keeps running.
package cli
