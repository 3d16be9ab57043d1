// Package frame is the small in-memory table engine behind the dataset
// endpoints.
//
// A Frame is an ordered set of equally long string columns. Cells keep the
// text they were read with; the empty string marks a missing value. Each
// column carries an inferred Kind that decides which operations accept it
// (describe, group-by aggregation and correlation need numeric columns,
// date-range filtering needs a datetime column).
//
// Operations never mutate their receiver; they return a new Frame.
package frame
