// Package services defines the shared error taxonomy used to classify
// pipeline failures into job outcomes.
package services
