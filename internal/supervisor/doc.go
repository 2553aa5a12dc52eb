// Package supervisor tracks background tasks so that shutdown can cancel
// and await all outstanding work.
package supervisor
