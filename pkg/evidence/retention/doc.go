// Package retention enforces age-based and count-based retention policies
// on stored synthesis records, optionally on a cron schedule.
package retention
