// Code generated by hand for collector tests. DO NOT EDIT.

package sample

func generated() int { return 1 }
