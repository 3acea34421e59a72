// tictacevoctl trains tic-tac-toe policies with a genetic algorithm,
// archives the evolved genomes, and lets a human play against them.
//
// Usage:
//
//	# Train with defaults and archive the run
//	tictacevoctl train
//
//	# Train from a config file, eight parallel evaluators
//	tictacevoctl train --config train.yaml --workers 8
//
//	# List archived runs, inspect one, play against its best genome
//	tictacevoctl runs
//	tictacevoctl show --run <id>
//	tictacevoctl play --run <id>
package main

func main() {
	Execute()
}
