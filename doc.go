// Package exoplanetdetect classifies stars as exoplanet hosts from flux
// time series. The repository is organized as a fixed preprocessing and
// balancing pipeline (frequency transform, smoothing, normalization, robust
// scaling, minority oversampling) feeding two trainable classifier
// families, a dense network and a 1-D convolutional network, with shared
// metrics, plotting and a SQLite run registry.
//
// See cmd/exodetect for the end-to-end workflow.
package exoplanetdetect
