// Package process terminates the headless browser and its helper processes.
package process
