// Package cmd contains the command-line utilities of ensemble: ensemble_demo, which fits and evaluates an ensemble
// on a train/test split of a dataset, ensemble_train and ensemble_predict, which fit and persist an ensemble and
// later predict with it, and cookbook, which runs recipes of the other two. It also contains code shared by these
// utilities, such as their common arguments and the way results are reported.
package cmd
