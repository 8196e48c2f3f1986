// Package model defines the data types shared across the acquisition
// pipeline: media items, stream descriptors, playlists and batch results.
package model
